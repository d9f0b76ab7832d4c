package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Mode is one azimuthal Fourier component of a ring:
// value(phi) = sum over m of Amplitude * cos(m*phi + Phase).
type Mode struct {
	M         int
	Amplitude float64
	Phase     float64
}

// AzimuthalModes decomposes ring into modes 0..maxM. maxM is capped at
// len(ring)/2.
func AzimuthalModes(ring []float64, maxM int) ([]Mode, error) {
	n := len(ring)
	if n == 0 {
		return nil, fmt.Errorf("analysis: empty ring")
	}
	if maxM < 0 {
		return nil, fmt.Errorf("analysis: negative mode number %d", maxM)
	}
	if maxM > n/2 {
		maxM = n / 2
	}

	coeffs := fft.FFTReal(ring)

	modes := make([]Mode, maxM+1)
	for m := range modes {
		c := coeffs[m]
		amp := cmplx.Abs(c) / float64(n)
		if m > 0 && !(n%2 == 0 && m == n/2) {
			amp *= 2
		}
		modes[m] = Mode{M: m, Amplitude: amp, Phase: cmplx.Phase(c)}
	}
	return modes, nil
}

// PowerSpectrum returns |F_m|^2 / n for m = 0..n/2.
func PowerSpectrum(ring []float64) []float64 {
	n := len(ring)
	if n == 0 {
		return nil
	}
	coeffs := fft.FFTReal(ring)
	ps := make([]float64, n/2+1)
	for m := range ps {
		a := cmplx.Abs(coeffs[m])
		ps[m] = a * a / float64(n)
	}
	return ps
}

// ModeProfile returns, for every ring of field, the amplitude of mode m
// relative to the ring's mean. Rings with zero mean report NaN.
func ModeProfile(field []float64, nAz, m int) ([]float64, error) {
	if nAz <= 0 || len(field)%nAz != 0 {
		return nil, ErrShape
	}
	if m < 0 || m > nAz/2 {
		return nil, fmt.Errorf("analysis: mode %d out of range for %d sectors", m, nAz)
	}

	n := len(field) / nAz
	out := make([]float64, n)
	for r := range out {
		modes, err := AzimuthalModes(Ring(field, nAz, r), m)
		if err != nil {
			return nil, err
		}
		if modes[0].Amplitude == 0 {
			out[r] = math.NaN()
			continue
		}
		out[r] = modes[m].Amplitude / math.Abs(modes[0].Amplitude)
	}
	return out, nil
}
