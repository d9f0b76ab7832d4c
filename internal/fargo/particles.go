package fargo

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
)

// ParticleRecordSize is the on-disk size of one particle record.
const ParticleRecordSize = 72

// Particle is the state of one dust particle at the loaded timestep.
type Particle struct {
	Position [2]float64
	Velocity [2]float64
	Mass     float64
}

type particleRecord struct {
	_      [8]byte
	X, Y   float64
	VX, VY float64
	Mass   float64
	_      [24]byte
}

// ParticleFileName returns the name of the particle file for timestep t.
func ParticleFileName(t int) string {
	return fmt.Sprintf("particles%d.dat", t)
}

// readParticles reads every complete record of the particle file at path.
// Trailing bytes that do not fill a record are ignored.
func readParticles(path string) ([]Particle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	n := int(info.Size() / ParticleRecordSize)
	if n == 0 {
		return []Particle{}, nil
	}

	recs := make([]particleRecord, n)
	if err := binary.Read(bufio.NewReader(f), binary.LittleEndian, recs); err != nil {
		return nil, shortRead(err)
	}

	particles := make([]Particle, n)
	for i, r := range recs {
		particles[i] = Particle{
			Position: [2]float64{r.X, r.Y},
			Velocity: [2]float64{r.VX, r.VY},
			Mass:     r.Mass,
		}
	}
	return particles, nil
}
