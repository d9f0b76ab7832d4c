package analysis

import (
	"gonum.org/v1/gonum/floats"
)

// Ring returns the values of radial index r as a view into field.
func Ring(field []float64, nAz, r int) []float64 {
	return field[r*nAz : (r+1)*nAz]
}

// RadialProfile averages every ring of field over the azimuth.
func RadialProfile(field []float64, nAz int) []float64 {
	if nAz <= 0 {
		return nil
	}
	n := len(field) / nAz
	profile := make([]float64, n)
	for r := range profile {
		profile[r] = floats.Sum(Ring(field, nAz, r)) / float64(nAz)
	}
	return profile
}

// Contrast divides every value of profile by its mean, so 1 marks the
// average level.
func Contrast(profile []float64) []float64 {
	out := make([]float64, len(profile))
	if len(profile) == 0 {
		return out
	}
	mean := floats.Sum(profile) / float64(len(profile))
	if mean == 0 {
		return out
	}
	floats.ScaleTo(out, 1/mean, profile)
	return out
}
