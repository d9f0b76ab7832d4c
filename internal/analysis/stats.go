package analysis

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrShape = errors.New("analysis: field does not match grid shape")

// Stats summarizes a field.
type Stats struct {
	Min, Max float64
	Mean     float64
	StdDev   float64
	Sum      float64
	Count    int
}

// FieldStats computes summary statistics of field. An empty field yields the
// zero Stats.
func FieldStats(field []float64) Stats {
	if len(field) == 0 {
		return Stats{}
	}
	mean, std := stat.MeanStdDev(field, nil)
	if len(field) == 1 {
		std = 0
	}
	return Stats{
		Min:    floats.Min(field),
		Max:    floats.Max(field),
		Mean:   mean,
		StdDev: std,
		Sum:    floats.Sum(field),
		Count:  len(field),
	}
}

// FiniteStats is FieldStats over the finite values of field. It also
// returns how many NaN or infinite values were left out.
func FiniteStats(field []float64) (Stats, int) {
	finite := make([]float64, 0, len(field))
	for _, v := range field {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	return FieldStats(finite), len(field) - len(finite)
}

// DiskMass integrates a surface density field over the annuli between
// consecutive radii. Each of the len(radii)-1 annuli uses the mean of its
// inner and outer vertex rings.
func DiskMass(field, radii []float64, nAz int) (float64, error) {
	nRings := len(radii)
	if nAz <= 0 || nRings < 2 || len(field) != nRings*nAz {
		return 0, ErrShape
	}

	cells := make([]float64, nAz)
	mass := 0.0
	for r := 0; r+1 < nRings; r++ {
		inner := Ring(field, nAz, r)
		outer := Ring(field, nAz, r+1)
		floats.AddTo(cells, inner, outer)

		area := math.Pi * (radii[r+1]*radii[r+1] - radii[r]*radii[r]) / float64(nAz)
		mass += 0.5 * area * floats.Sum(cells)
	}
	return mass, nil
}
