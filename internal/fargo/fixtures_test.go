package fargo

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// fixtureT is the part of testing.TB that GinkgoT also provides.
type fixtureT interface {
	Helper()
	TempDir() string
	Fatalf(format string, args ...any)
}

// runFixture writes a small synthetic run to disk. Field values depend only
// on the timestep so tests can tell snapshots apart:
//
//	density      t+1
//	temperature  100*(t+1)
//	vrad/vtheta  10*(t+1)
//
// Planet i at timestep t is at (t+i, 2t) moving with (0.5t, 1+i).
type runFixture struct {
	Dialect   Dialect
	NRad      int // collocated rings minus one
	NAz       int
	Steps     int // timesteps 0..Steps are written
	Planets   int
	Particles int // records per particle file; 0 disables particles
	Ntot      int // defaults to Steps+5

	// ParSubdir places the parameter file one directory below the output
	// directory's parent.
	ParSubdir bool

	Root string
	Out  string
	Par  string
}

func (f *runFixture) ghost() bool { return !f.Dialect.ReadGhostCells }

func (f *runFixture) write(t fixtureT) string {
	t.Helper()
	if f.Dialect.Name == "" {
		f.Dialect = TWAM
	}
	if f.Ntot == 0 {
		f.Ntot = f.Steps + 5
	}

	f.Root = t.TempDir()
	f.Out = filepath.Join(f.Root, "out")
	mkdir(t, f.Out)

	parDir := f.Root
	if f.ParSubdir {
		parDir = filepath.Join(f.Root, "setups")
		mkdir(t, parDir)
	}

	nrad := f.NRad
	if f.ghost() {
		nrad += 2
	}
	var par strings.Builder
	fmt.Fprintf(&par, "# synthetic run\nRmin 0.4\nRmax 2.5\nNtot %d\nNrad %d\nNsec %d\nOutputDir out\n", f.Ntot, nrad, f.NAz)
	if f.Planets > 0 {
		par.WriteString("PlanetConfig planets.cfg\n")
		var cfg strings.Builder
		cfg.WriteString("# Planet Name  Distance  Mass  Accretion  FeelDisk  FeelOthers  Eccentricity\n\n")
		for i := 1; i <= f.Planets; i++ {
			fmt.Fprintf(&cfg, "P%d  %d.0  0.001  0.0  YES  YES  0.0\n", i, i)
		}
		writeText(t, filepath.Join(parDir, "planets.cfg"), cfg.String())
	}
	if f.Particles > 0 {
		fmt.Fprintf(&par, "IntegrateParticles yes\nNumberOfParticles %d\n", f.Particles)
	}
	f.Par = filepath.Join(parDir, "run.par")
	writeText(t, f.Par, par.String())

	var radii strings.Builder
	if f.ghost() {
		radii.WriteString("0.35\n")
	}
	for i := 0; i <= f.NRad; i++ {
		fmt.Fprintf(&radii, "%.6g\n", 0.4+0.1*float64(i))
	}
	writeText(t, filepath.Join(f.Out, RadiiFileName), radii.String())

	for i := 1; i <= f.Planets; i++ {
		var traj strings.Builder
		for ts := 0; ts <= f.Steps; ts++ {
			fmt.Fprintf(&traj, "%d\t%g\t%g\t%g\t%g\t0.001\t0\t0\t0\n",
				ts, float64(ts+i), 2*float64(ts), 0.5*float64(ts), float64(1+i))
		}
		writeText(t, filepath.Join(f.Out, f.Dialect.PlanetFileName(i)), traj.String())
	}

	for ts := 0; ts <= f.Steps; ts++ {
		f.writeGrids(t, ts)
		if f.Particles > 0 {
			writeParticleFile(t, filepath.Join(f.Out, ParticleFileName(ts)), f.Particles, ts)
		}
	}
	return f.Par
}

func (f *runFixture) writeGrids(t fixtureT, ts int) {
	t.Helper()
	scalar := func(v float64) []float64 {
		return f.withGhost(constant(f.NRad*f.NAz, v))
	}
	vector := func(v float64) []float64 {
		return f.withGhost(constant((f.NRad+f.Dialect.VectorRingsExtra)*f.NAz, v))
	}
	base := float64(ts + 1)
	writeFloats(t, filepath.Join(f.Out, Density.FileName(ts)), scalar(base))
	writeFloats(t, filepath.Join(f.Out, Temperature.FileName(ts)), scalar(100*base))
	writeFloats(t, filepath.Join(f.Out, RadialVelocity.FileName(ts)), vector(10*base))
	writeFloats(t, filepath.Join(f.Out, AzimuthalVelocity.FileName(ts)), vector(10*base))
}

// withGhost prepends a ring of -1 so a loader that forgets to skip it shows.
func (f *runFixture) withGhost(vals []float64) []float64 {
	if !f.ghost() {
		return vals
	}
	return append(constant(f.NAz, -1), vals...)
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func mkdir(t fixtureT, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
}

func writeText(t fixtureT, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writeFloats(t fixtureT, path string, vals []float64) {
	t.Helper()
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, vals); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// writeParticleFile writes n records; particle k at timestep ts sits at
// (k, ts) with velocity (-k, 1) and mass 0.01*(k+1).
func writeParticleFile(t fixtureT, path string, n, ts int) {
	t.Helper()
	var buf bytes.Buffer
	for k := 0; k < n; k++ {
		rec := [9]float64{
			999,
			float64(k), float64(ts),
			-float64(k), 1,
			0.01 * float64(k+1),
			999, 999, 999,
		}
		if err := binary.Write(&buf, binary.LittleEndian, rec); err != nil {
			t.Fatalf("encode %s: %v", path, err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
