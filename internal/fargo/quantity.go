package fargo

import (
	"fmt"
	"strings"
)

// Quantity selects which physical field the catalog keeps loaded.
type Quantity int

const (
	Density Quantity = iota
	Temperature
	RadialVelocity
	AzimuthalVelocity
)

var quantityInfo = [...]struct {
	name   string
	prefix string
	scalar bool
}{
	Density:           {"density", "gasdens", true},
	Temperature:       {"temperature", "gasTemperature", true},
	RadialVelocity:    {"vrad", "gasvrad", false},
	AzimuthalVelocity: {"vtheta", "gasvtheta", false},
}

// Quantities lists every supported quantity in menu order.
func Quantities() []Quantity {
	return []Quantity{Density, Temperature, RadialVelocity, AzimuthalVelocity}
}

func (q Quantity) valid() bool {
	return q >= 0 && int(q) < len(quantityInfo)
}

func (q Quantity) String() string {
	if !q.valid() {
		return fmt.Sprintf("quantity(%d)", int(q))
	}
	return quantityInfo[q].name
}

// Prefix is the file name stem of the quantity's grid files.
func (q Quantity) Prefix() string {
	return quantityInfo[q].prefix
}

// Scalar reports whether the field is stored cell-centered and must be
// interpolated onto the grid vertices.
func (q Quantity) Scalar() bool {
	return quantityInfo[q].scalar
}

// FileName returns the grid file name for timestep t.
func (q Quantity) FileName(t int) string {
	return fmt.Sprintf("%s%d.dat", q.Prefix(), t)
}

// ParseQuantity accepts a quantity name or its file prefix, in any case.
func ParseQuantity(s string) (Quantity, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, q := range Quantities() {
		if s == q.String() || s == strings.ToLower(q.Prefix()) {
			return q, nil
		}
	}
	switch s {
	case "dens", "rho":
		return Density, nil
	case "temp":
		return Temperature, nil
	}
	return 0, fmt.Errorf("fargo: unknown quantity %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (q Quantity) MarshalText() ([]byte, error) {
	if !q.valid() {
		return nil, fmt.Errorf("fargo: unknown quantity %d", int(q))
	}
	return []byte(q.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (q *Quantity) UnmarshalText(text []byte) error {
	v, err := ParseQuantity(string(text))
	if err != nil {
		return err
	}
	*q = v
	return nil
}
