// Package roche computes Roche lobe geometry of a star and planet in the
// corotating frame. Lengths are in units of the star-planet separation and
// the star sits at the origin with the planet at (1, 0).
package roche

import (
	"fmt"
	"math"
)

const (
	// Epsilon keeps bisection intervals off the singular points of the
	// potential.
	Epsilon = 0x1p-52

	// Tolerance is the interval width at which bisection stops.
	Tolerance = 1e-5

	// MaxIterations bounds every bisection.
	MaxIterations = 200
)

// Potential is the dimensionless Roche potential for mass ratio q at (x, y).
func Potential(q, x, y float64) float64 {
	a := 1.0 / (1.0 + q)
	b := q / (1.0 + q)

	r1 := math.Sqrt(x*x + y*y)
	r2 := math.Sqrt((x-1.0)*(x-1.0) + y*y)
	return a/r1 + b/r2 + 0.5*((x-b)*(x-b)+y*y)
}

// Result of a bisection.
type Result struct {
	Root       float64
	Iterations int
}

// Bisect finds a root of f in [lo, hi] by halving the interval until it is
// narrower than tol. The endpoint values must differ in sign or one of them
// must be zero.
func Bisect(f func(float64) float64, lo, hi, tol float64) (Result, error) {
	flo, fhi := f(lo), f(hi)
	if math.IsNaN(flo) || math.IsNaN(fhi) {
		return Result{}, ErrNotFinite
	}
	if flo == 0 {
		return Result{Root: lo}, nil
	}
	if fhi == 0 {
		return Result{Root: hi}, nil
	}
	if math.Signbit(flo) == math.Signbit(fhi) {
		return Result{}, &BracketError{Lo: lo, Hi: hi, FLo: flo, FHi: fhi}
	}

	iter := 0
	for math.Abs(hi-lo) > tol {
		if iter == MaxIterations {
			return Result{Root: 0.5 * (lo + hi), Iterations: iter}, ErrNoConvergence
		}
		iter++

		mid := 0.5 * (lo + hi)
		fmid := f(mid)
		if math.IsNaN(fmid) {
			return Result{}, ErrNotFinite
		}
		if fmid == 0 {
			return Result{Root: mid, Iterations: iter}, nil
		}

		if math.Signbit(fmid) == math.Signbit(flo) {
			lo, flo = mid, fmid
		} else {
			hi = mid
		}
	}
	return Result{Root: 0.5 * (lo + hi), Iterations: iter}, nil
}

// L1Point returns the distance of the inner Lagrange point from the star.
func L1Point(q float64) (Result, error) {
	a := 1.0 / (1.0 + q)
	b := q / (1.0 + q)

	// negative x derivative of the potential on the axis
	f := func(x float64) float64 {
		return a/(x*x) - b/((x-1.0)*(x-1.0)) - (x - b)
	}
	res, err := Bisect(f, Epsilon, 1.0-Epsilon, Tolerance)
	if err != nil {
		return res, fmt.Errorf("L1 point for q=%g: %w", q, err)
	}
	return res, nil
}

// RocheRadius returns the distance from the star, in direction phi, at which
// the potential equals target. phi is measured from the +y axis towards the
// planet at +x, so phi = pi/2 points at the planet.
func RocheRadius(q, l1, target, phi float64) (Result, error) {
	sin, cos := math.Sincos(phi)
	f := func(r float64) float64 {
		return Potential(q, r*sin, r*cos) - target
	}
	res, err := Bisect(f, Epsilon, l1, Tolerance)
	if err != nil {
		return res, fmt.Errorf("roche radius for q=%g phi=%g: %w", q, phi, err)
	}
	return res, nil
}

// Lobe returns n vertices of the star's Roche lobe for a planet of mass ratio
// q at (x, y). The outline is scaled by the planet's distance and oriented
// so that the lobe's tip points at the planet.
func Lobe(q, x, y float64, n int) ([][2]float64, error) {
	if n <= 0 {
		return nil, nil
	}
	d := math.Hypot(x, y)
	if d == 0 {
		return nil, fmt.Errorf("roche lobe: planet at the origin")
	}

	l1, err := L1Point(q)
	if err != nil {
		return nil, err
	}
	target := Potential(q, l1.Root, 0)
	alpha := math.Atan2(y, x)

	pts := make([][2]float64, n)
	for j := range pts {
		theta := 2 * math.Pi * float64(j) / float64(n)
		r, err := RocheRadius(q, l1.Root, target, math.Pi/2-(theta-alpha))
		if err != nil {
			return nil, err
		}
		pts[j] = [2]float64{
			d * r.Root * math.Cos(theta),
			d * r.Root * math.Sin(theta),
		}
	}
	return pts, nil
}
