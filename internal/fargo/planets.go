package fargo

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// DefaultBodyRadius is the display radius used for the star when StarRadius
// is not set and for planets whose table row has no radius column.
const DefaultBodyRadius = 0.009304813 * 10

// Planet is the state of one body at the loaded timestep. Index 0 of a
// catalog is always the central star.
type Planet struct {
	Position [3]float64
	Velocity [3]float64
	Mass     float64
	Radius   float64
}

// PlanetSpec is one row of a planet configuration table:
//
//	name a mass accretion feeldisk feelother e [radius temperature irradiate phi]
type PlanetSpec struct {
	Name          string
	SemiMajorAxis float64
	Mass          float64
	Accretion     float64
	FeelDisk      bool
	FeelOther     bool
	Eccentricity  float64

	// Optional trailing columns.
	Radius      float64
	Temperature float64
	Irradiate   bool
	Phi         float64
}

// InitialState places the planet at apoapsis on the positive x axis with the
// matching Keplerian velocity around a unit mass star.
func (s PlanetSpec) InitialState() Planet {
	a, e, m := s.SemiMajorAxis, s.Eccentricity, s.Mass
	return Planet{
		Position: [3]float64{a * (1.0 + e), 0, 0},
		Velocity: [3]float64{0, math.Sqrt((1.0+m)/a) * math.Sqrt((1.0-e)/(1.0+e)), 0},
		Mass:     m,
		Radius:   s.Radius,
	}
}

// ReadPlanetTable parses a planet configuration file. Blank lines and lines
// whose first column starts with '#' are skipped.
func ReadPlanetTable(path string) ([]PlanetSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var specs []PlanetSpec
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		spec, err := parsePlanetRow(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRecord, line, err)
		}
		specs = append(specs, spec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return specs, nil
}

func parsePlanetRow(fields []string) (PlanetSpec, error) {
	if len(fields) < 7 {
		return PlanetSpec{}, fmt.Errorf("expected at least 7 columns, got %d", len(fields))
	}

	nums := make([]float64, 0, 4)
	for _, col := range []int{1, 2, 3, 6} {
		v, err := strconv.ParseFloat(fields[col], 64)
		if err != nil {
			return PlanetSpec{}, fmt.Errorf("column %d: %q is not a number", col+1, fields[col])
		}
		nums = append(nums, v)
	}

	spec := PlanetSpec{
		Name:          fields[0],
		SemiMajorAxis: nums[0],
		Mass:          nums[1],
		Accretion:     nums[2],
		FeelDisk:      strings.EqualFold(fields[4], "yes"),
		FeelOther:     strings.EqualFold(fields[5], "yes"),
		Eccentricity:  nums[3],
		Radius:        DefaultBodyRadius,
	}

	if len(fields) > 7 {
		r, err := strconv.ParseFloat(fields[7], 64)
		if err != nil {
			return PlanetSpec{}, fmt.Errorf("column 8: %q is not a number", fields[7])
		}
		spec.Radius = r
	}
	if len(fields) > 8 {
		spec.Temperature, _ = strconv.ParseFloat(fields[8], 64)
	}
	if len(fields) > 9 {
		spec.Irradiate = strings.EqualFold(fields[9], "yes")
	}
	if len(fields) > 10 {
		spec.Phi, _ = strconv.ParseFloat(fields[10], 64)
	}
	return spec, nil
}

// trajectoryRecord is the leading part of one line of planet{n}.dat.
type trajectoryRecord struct {
	Timestep int
	X, Y     float64
	VX, VY   float64
}

func parseTrajectoryLine(s string) (trajectoryRecord, bool) {
	fields := strings.Fields(s)
	if len(fields) < 5 {
		return trajectoryRecord{}, false
	}
	ts, err := strconv.ParseUint(fields[0], 10, 31)
	if err != nil {
		return trajectoryRecord{}, false
	}
	var v [4]float64
	for i := range v {
		if v[i], err = strconv.ParseFloat(fields[i+1], 64); err != nil {
			return trajectoryRecord{}, false
		}
	}
	return trajectoryRecord{Timestep: int(ts), X: v[0], Y: v[1], VX: v[2], VY: v[3]}, true
}

// readTrajectory finds the record of timestep t in the trajectory file at path.
func readTrajectory(path string, t int, seek SeekStrategy) (trajectoryRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return trajectoryRecord{}, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	switch seek {
	case SeekLineSkip:
		return seekLine(sc, t)
	default:
		return scanFor(sc, t)
	}
}

func scanFor(sc *bufio.Scanner, t int) (trajectoryRecord, error) {
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		rec, ok := parseTrajectoryLine(text)
		if !ok {
			return trajectoryRecord{}, fmt.Errorf("%w: line %d: %q", ErrMalformedRecord, line, text)
		}
		if rec.Timestep == t {
			return rec, nil
		}
	}
	if err := sc.Err(); err != nil {
		return trajectoryRecord{}, err
	}
	return trajectoryRecord{}, ErrTimestepNotFound
}

func seekLine(sc *bufio.Scanner, t int) (trajectoryRecord, error) {
	for l := 0; l <= t; l++ {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return trajectoryRecord{}, err
			}
			return trajectoryRecord{}, fmt.Errorf("%w: file has only %d lines", ErrTimestepNotFound, l)
		}
	}
	text := sc.Text()
	rec, ok := parseTrajectoryLine(text)
	if !ok {
		return trajectoryRecord{}, fmt.Errorf("%w: line %d: %q", ErrMalformedRecord, t+1, text)
	}
	if rec.Timestep != t {
		return trajectoryRecord{}, fmt.Errorf("%w: line %d holds timestep %d", ErrTimestepNotFound, t+1, rec.Timestep)
	}
	return rec, nil
}
