package parfile

import (
	"sort"
	"strconv"
	"strings"
)

// Table is the result of parsing one parameter file. Keys are stored lower
// case; when a key appears more than once the first occurrence wins.
type Table struct {
	path   string
	values map[string]string
}

func newTable(path string) *Table {
	return &Table{path: path, values: make(map[string]string)}
}

func (t *Table) add(key, value string) {
	if _, ok := t.values[key]; ok {
		return
	}
	t.values[key] = value
}

// Path returns the name the table was parsed from.
func (t *Table) Path() string { return t.path }

// Len returns the number of distinct keys.
func (t *Table) Len() int { return len(t.values) }

// Keys returns all keys in sorted order.
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.values))
	for k := range t.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Exists reports whether key is defined.
func (t *Table) Exists(key string) bool {
	_, ok := t.values[strings.ToLower(key)]
	return ok
}

func (t *Table) lookup(key string) (string, error) {
	v, ok := t.values[strings.ToLower(key)]
	if !ok {
		return "", &KeyError{Path: t.path, Key: key, Err: ErrMissingKey}
	}
	return v, nil
}

func (t *Table) malformed(key, value string) error {
	return &KeyError{Path: t.path, Key: key, Value: value, Err: ErrMalformedValue}
}

// String returns the raw value of key.
func (t *Table) String(key string) (string, error) {
	return t.lookup(key)
}

// Int returns key as a signed integer. Base prefixes (0x, 0o, 0b, leading 0)
// are honoured.
func (t *Table) Int(key string) (int, error) {
	v, err := t.lookup(key)
	if err != nil {
		return 0, err
	}
	return t.parseInt(key, v)
}

func (t *Table) parseInt(key, v string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 0, strconv.IntSize)
	if err != nil {
		return 0, t.malformed(key, v)
	}
	return int(n), nil
}

// Uint returns key as an unsigned integer. Negative values are malformed.
func (t *Table) Uint(key string) (uint, error) {
	v, err := t.lookup(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(strings.TrimSpace(v), 0, strconv.IntSize)
	if err != nil {
		return 0, t.malformed(key, v)
	}
	return uint(n), nil
}

// Double returns key as a float64.
func (t *Table) Double(key string) (float64, error) {
	v, err := t.lookup(key)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, t.malformed(key, v)
	}
	return f, nil
}

// Bool returns key as a boolean. true/yes/on and false/no/off are accepted in
// any case, an empty value is false and anything else must be an integer,
// where non-zero means true.
func (t *Table) Bool(key string) (bool, error) {
	v, err := t.lookup(key)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(v) {
	case "":
		return false, nil
	case "true", "yes", "on":
		return true, nil
	case "false", "no", "off":
		return false, nil
	}
	n, err := t.parseInt(key, v)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

// StringOr returns key or def when key is absent.
func (t *Table) StringOr(key, def string) string {
	if v, err := t.String(key); err == nil {
		return v
	}
	return def
}

// IntOr returns key or def when key is absent or malformed.
func (t *Table) IntOr(key string, def int) int {
	if v, err := t.Int(key); err == nil {
		return v
	}
	return def
}

// UintOr returns key or def when key is absent or malformed.
func (t *Table) UintOr(key string, def uint) uint {
	if v, err := t.Uint(key); err == nil {
		return v
	}
	return def
}

// DoubleOr returns key or def when key is absent or malformed.
func (t *Table) DoubleOr(key string, def float64) float64 {
	if v, err := t.Double(key); err == nil {
		return v
	}
	return def
}

// BoolOr returns key or def when key is absent or malformed.
func (t *Table) BoolOr(key string, def bool) bool {
	if v, err := t.Bool(key); err == nil {
		return v
	}
	return def
}
