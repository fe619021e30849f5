// Package record implements the line-oriented key/value wire format shared by
// mappers and reducers: one record per line, key and value separated by a
// single tab, terminated by a newline. Tabs and newlines inside keys or values
// are not escaped.
package record

import (
	"errors"
	"strings"
)

// Separator splits a key from its value on the wire.
const Separator = '\t'

// ErrMalformedRecord is returned for lines that carry no key/value separator.
var ErrMalformedRecord = errors.New("malformed record")

// Record is one key/value pair. Value holds the number as text; it is only
// interpreted by the aggregation strategy downstream.
type Record struct {
	Key   string
	Value string
}

// New creates a Record
func New(key, value string) Record {
	return Record{Key: key, Value: value}
}

// TrimLineEnding drops a trailing "\n" and an optional "\r" before it.
func TrimLineEnding(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// IsBlank reports whether a line has nothing but whitespace.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// Parse splits a wire line at its first tab. The line ending is removed first;
// everything after the first tab belongs to the value.
func Parse(line string) (Record, error) {
	line = TrimLineEnding(line)
	key, value, found := strings.Cut(line, string(Separator))
	if !found {
		return Record{}, ErrMalformedRecord
	}
	return Record{Key: key, Value: value}, nil
}

// String returns the record without its line terminator.
func (r Record) String() string {
	return r.Key + string(Separator) + r.Value
}

// AppendLine appends the wire form of r, newline included, to buf.
func (r Record) AppendLine(buf []byte) []byte {
	buf = append(buf, r.Key...)
	buf = append(buf, Separator)
	buf = append(buf, r.Value...)
	return append(buf, '\n')
}
