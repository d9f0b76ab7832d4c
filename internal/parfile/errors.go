package parfile

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax indicates a line the grammar does not accept.
	ErrSyntax = errors.New("parfile: syntax error")

	// ErrMissingKey indicates a lookup of a key the file does not define.
	ErrMissingKey = errors.New("parfile: missing key")

	// ErrMalformedValue indicates a value that cannot be converted to the requested type.
	ErrMalformedValue = errors.New("parfile: malformed value")
)

// SyntaxError reports where parsing stopped.
type SyntaxError struct {
	Path   string
	Line   int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("parfile: bad config line %d in %s: %s", e.Line, e.Path, e.Reason)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// KeyError wraps ErrMissingKey or ErrMalformedValue with the offending key.
type KeyError struct {
	Path  string
	Key   string
	Value string
	Err   error
}

func (e *KeyError) Error() string {
	if errors.Is(e.Err, ErrMalformedValue) {
		return fmt.Sprintf("%v: bad value %q for '%s' in %s", e.Err, e.Value, e.Key, e.Path)
	}
	return fmt.Sprintf("%v: no setting for '%s' in %s", e.Err, e.Key, e.Path)
}

func (e *KeyError) Unwrap() error {
	return e.Err
}
