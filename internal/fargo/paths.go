package fargo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/phil-mansfield/table"
)

// RadiiFileName is the name of the radial grid file inside the output directory.
const RadiiFileName = "used_rad.dat"

// resolvePath locates name relative to the directory holding the run's
// configuration file, falling back to that directory's parent. The result is
// absolute with symlinks resolved.
func resolvePath(configDir, name string) (string, error) {
	var candidates []string
	if filepath.IsAbs(name) {
		candidates = []string{name}
	} else {
		candidates = []string{
			filepath.Join(configDir, name),
			filepath.Join(configDir, "..", name),
		}
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err != nil {
			continue
		}
		abs, err := filepath.Abs(c)
		if err != nil {
			return "", err
		}
		return filepath.EvalSymlinks(abs)
	}
	return "", os.ErrNotExist
}

// readRadii reads n ascending radii from the first column of the radii file.
// When skipFirst is set, the leading ghost entry is discarded.
func readRadii(path string, n int, skipFirst bool) ([]float64, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	cols, err := table.ReadTable(path, []int{0}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	radii := cols[0]
	if skipFirst {
		if len(radii) == 0 {
			return nil, ErrShortFile
		}
		radii = radii[1:]
	}
	if len(radii) < n {
		return nil, fmt.Errorf("%w: %d of %d radii", ErrShortFile, len(radii), n)
	}
	return radii[:n:n], nil
}

// probeTimesteps returns the highest N in 1..limit such that every density
// file from 1 to N exists in dir.
func probeTimesteps(dir string, limit int) int {
	last := 0
	for n := 1; n <= limit; n++ {
		if _, err := os.Stat(filepath.Join(dir, Density.FileName(n))); err != nil {
			break
		}
		last = n
	}
	return last
}
