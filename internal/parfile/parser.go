// Package parfile reads FARGO style parameter files.
//
// A parameter file holds one "key value" pair per line. Keys are
// case-insensitive, '#' and ';' start comments, values may be double quoted
// and support the escapes \t \n \b \\ and \". A UTF-8 byte order mark is
// accepted at the very beginning of the file.
//
//	Nrad        128
//	OutputDir   "out/"   # relative to the parameter file
//
// Every call to Parse owns its own cursor and result table, so parsing is
// safe to repeat and tables are independent of each other.
package parfile

import (
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	maxKeyLen   = 256
	maxValueLen = 1024
)

var utf8BOM = [3]byte{0xef, 0xbb, 0xbf}

type parser struct {
	path  string
	data  []byte
	pos   int
	line  int
	eof   bool
	table *Table
}

// Parse reads and parses the parameter file at path.
func Parse(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseBytes(path, data)
}

// ParseReader parses a parameter file from r. name is used in error messages.
func ParseReader(name string, r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return parseBytes(name, data)
}

func parseBytes(name string, data []byte) (*Table, error) {
	p := &parser{
		path:  name,
		data:  data,
		line:  1,
		table: newTable(name),
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.table, nil
}

// next returns the next byte of input. CRLF is folded into '\n' and the end
// of input reads as an endless sequence of '\n' with eof set.
func (p *parser) next() byte {
	if p.pos >= len(p.data) {
		p.eof = true
		return '\n'
	}
	c := p.data[p.pos]
	p.pos++
	if c == '\r' && p.pos < len(p.data) && p.data[p.pos] == '\n' {
		p.pos++
		c = '\n'
	}
	if c == '\n' {
		p.line++
	}
	return c
}

func (p *parser) unread() {
	if !p.eof && p.pos > 0 {
		p.pos--
	}
}

func (p *parser) errorf(line int, format string, args ...any) error {
	return &SyntaxError{Path: p.path, Line: line, Reason: fmt.Sprintf(format, args...)}
}

func (p *parser) parse() error {
	bom := 0
	comment := false

	for {
		c := p.next()
		if bom >= 0 && bom < len(utf8BOM) {
			if !p.eof && c == utf8BOM[bom] {
				bom++
				continue
			}
			if bom > 0 {
				return p.errorf(p.line, "partial byte order mark")
			}
			bom = -1
		}
		if c == '\n' {
			if p.eof {
				return nil
			}
			comment = false
			continue
		}
		if comment || isSpace(c) {
			continue
		}
		if c == '#' || c == ';' {
			comment = true
			continue
		}
		if !isAlpha(c) {
			return p.errorf(p.line, "unexpected character %q", c)
		}
		if err := p.entry(lower(c)); err != nil {
			return err
		}
	}
}

// entry reads the rest of a key whose first character is first, then its value.
func (p *parser) entry(first byte) error {
	line := p.line
	key := []byte{first}

	var c byte
	for {
		c = p.next()
		if p.eof || !isKeyChar(c) {
			break
		}
		key = append(key, lower(c))
		if len(key) >= maxKeyLen {
			return p.errorf(line, "key too long")
		}
	}
	for c == ' ' || c == '\t' {
		c = p.next()
	}
	if c == '\n' {
		// a bare key carries no value and is not recorded
		return nil
	}

	p.unread()
	value, err := p.value(line)
	if err != nil {
		return err
	}
	p.table.add(string(key), value)
	return nil
}

func (p *parser) value(line int) (string, error) {
	var b strings.Builder
	quote, comment := false, false
	spaces := 0

	for {
		c := p.next()
		if b.Len() >= maxValueLen-1 {
			return "", p.errorf(line, "value too long")
		}
		if c == '\n' {
			if quote {
				return "", p.errorf(line, "unterminated quote")
			}
			return b.String(), nil
		}
		if comment {
			continue
		}
		if isSpace(c) && !quote {
			if b.Len() > 0 {
				spaces++
			}
			continue
		}
		if !quote && (c == ';' || c == '#') {
			comment = true
			continue
		}
		for ; spaces > 0; spaces-- {
			b.WriteByte(' ')
		}
		if c == '\\' {
			c = p.next()
			switch c {
			case '\n':
				continue
			case 't':
				c = '\t'
			case 'b':
				c = '\b'
			case 'n':
				c = '\n'
			case '\\', '"':
			default:
				return "", p.errorf(line, "unknown escape sequence \\%c", c)
			}
			b.WriteByte(c)
			continue
		}
		if c == '"' {
			quote = !quote
			continue
		}
		b.WriteByte(c)
	}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKeyChar(c byte) bool {
	return isAlpha(c) || (c >= '0' && c <= '9') || c == '-'
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
