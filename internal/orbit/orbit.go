// Package orbit derives Keplerian elements from the instantaneous state of a
// planet orbiting a unit mass star (G = 1).
package orbit

import (
	"math"

	"github.com/san-kum/diskview/internal/fargo"
)

// Elements describes the osculating orbit of one planet.
type Elements struct {
	Eccentricity  float64
	SemiMajorAxis float64
	SemiMinorAxis float64

	// ArgPeriapsis is the angle of the periapsis direction from the x axis.
	ArgPeriapsis float64

	// AngularMomentum is mass * (x vy - y vx).
	AngularMomentum float64
}

// Compute derives the elements from position, velocity and planet mass. The
// star has mass 1 and sits at the origin.
func Compute(x, y, vx, vy, mass float64) Elements {
	// specific angular momentum, j/mass
	h := x*vy - y*vx
	d := math.Hypot(x, y)
	mu := 1.0 + mass

	// Runge-Lenz vector
	ax := h*mu*vy - mu*mu*x/d
	ay := -h*mu*vx - mu*mu*y/d

	e := math.Hypot(ax, ay) / (mu * mu)
	a := h * h / mu / (1.0 - e*e)

	return Elements{
		Eccentricity:    e,
		SemiMajorAxis:   a,
		SemiMinorAxis:   a * math.Sqrt(1.0-e*e),
		ArgPeriapsis:    math.Atan2(ay, ax),
		AngularMomentum: mass * h,
	}
}

// FromPlanet computes the elements of p from its in-plane state.
func FromPlanet(p fargo.Planet) Elements {
	return Compute(p.Position[0], p.Position[1], p.Velocity[0], p.Velocity[1], p.Mass)
}

// Bound reports whether the orbit is an ellipse.
func (el Elements) Bound() bool {
	return el.Eccentricity < 1 && el.SemiMajorAxis > 0
}

// Periapsis is the closest distance to the star.
func (el Elements) Periapsis() float64 {
	return el.SemiMajorAxis * (1 - el.Eccentricity)
}

// Apoapsis is the largest distance from the star.
func (el Elements) Apoapsis() float64 {
	return el.SemiMajorAxis * (1 + el.Eccentricity)
}

// Path returns n points on the orbit ellipse, starting at periapsis. The star
// is at one focus. Unbound orbits have no path.
func Path(el Elements, n int) [][2]float64 {
	if n <= 0 || !el.Bound() {
		return nil
	}

	cosw, sinw := math.Cos(el.ArgPeriapsis), math.Sin(el.ArgPeriapsis)
	cx := -el.SemiMajorAxis * el.Eccentricity * cosw
	cy := -el.SemiMajorAxis * el.Eccentricity * sinw

	pts := make([][2]float64, n)
	for k := range pts {
		t := 2 * math.Pi * float64(k) / float64(n)
		u := el.SemiMajorAxis * math.Cos(t)
		v := el.SemiMinorAxis * math.Sin(t)
		pts[k] = [2]float64{
			cx + u*cosw - v*sinw,
			cy + u*sinw + v*cosw,
		}
	}
	return pts
}
