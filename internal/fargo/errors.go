package fargo

import (
	"errors"
	"fmt"
)

// Domain errors for snapshot loading.
var (
	// ErrShortFile indicates a file that ended before the expected amount of data.
	ErrShortFile = errors.New("fargo: file ended too early")

	// ErrTimestepNotFound indicates a trajectory file without a record for the requested timestep.
	ErrTimestepNotFound = errors.New("fargo: timestep not found")

	// ErrMalformedRecord indicates a text record whose columns cannot be parsed.
	ErrMalformedRecord = errors.New("fargo: malformed record")

	// ErrOutputDirNotFound indicates that neither candidate output directory exists.
	ErrOutputDirNotFound = errors.New("fargo: output directory does not exist")

	// ErrNoRun indicates a timestep operation before a run was loaded.
	ErrNoRun = errors.New("fargo: no run loaded")

	// ErrBadGrid indicates grid extents that cannot describe a polar grid.
	ErrBadGrid = errors.New("fargo: invalid grid extents")
)

// LoadError wraps an error with the operation, file and timestep it occurred at.
type LoadError struct {
	Op       string
	Path     string
	Timestep int
	Err      error
}

func (e *LoadError) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Timestep >= 0 {
		msg += fmt.Sprintf(" (timestep %d)", e.Timestep)
	}
	return msg + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func loadErr(op, path string, timestep int, err error) error {
	return &LoadError{Op: op, Path: path, Timestep: timestep, Err: err}
}
