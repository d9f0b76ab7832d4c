package fargo

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os"
)

// gridShape carries everything needed to read one polar grid file of a run.
type gridShape struct {
	nRad, nAz int

	// skipGhost drops one leading ring of nAz values.
	skipGhost bool

	// vectorRings is the number of radial rings stored in a velocity file.
	vectorRings int
}

func (g gridShape) size() int {
	return (g.nRad + 1) * g.nAz
}

// readFloats fills dst with little-endian float64 values from r.
func readFloats(r io.Reader, dst []float64) error {
	if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
		return shortRead(err)
	}
	return nil
}

func shortRead(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrShortFile
	}
	return err
}

// load reads the grid file at path into dest, which must hold g.size() values.
// Scalar fields are interpolated from cell centers to vertices; vector fields
// are copied as stored.
func (g gridShape) load(dest []float64, path string, scalar bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReader(f)

	if g.skipGhost {
		if _, err := r.Discard(g.nAz * 8); err != nil {
			return shortRead(err)
		}
	}

	if !scalar {
		return readFloats(r, dest[:g.vectorRings*g.nAz])
	}

	cells := make([]float64, g.nRad*g.nAz)
	if err := readFloats(r, cells); err != nil {
		return err
	}
	interpolate(dest, cells, g.nRad, g.nAz)
	return nil
}

// Interpolate maps nRad x nAz cell-centered values onto the (nRad+1) x nAz
// vertices between them. The azimuthal direction is periodic.
func Interpolate(cells []float64, nRad, nAz int) []float64 {
	dest := make([]float64, (nRad+1)*nAz)
	interpolate(dest, cells, nRad, nAz)
	return dest
}

func interpolate(dest, cells []float64, nRad, nAz int) {
	for r := 0; r <= nRad; r++ {
		for a := 0; a < nAz; a++ {
			prev := a - 1
			if a == 0 {
				prev = nAz - 1
			}
			idx := r*nAz + a

			switch r {
			case 0:
				dest[idx] = 0.5 * (cells[idx] + cells[r*nAz+prev])
			case nRad:
				below := (r - 1) * nAz
				dest[idx] = 0.5 * (cells[below+a] + cells[below+prev])
			default:
				below := (r - 1) * nAz
				dest[idx] = 0.25 * (cells[idx] + cells[r*nAz+prev] + cells[below+a] + cells[below+prev])
			}
		}
	}
}
