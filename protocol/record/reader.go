package record

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

const readBufferSize = 64 * 1024

// LineReader yields input lines one at a time without a length limit.
type LineReader struct {
	reader *bufio.Reader
	lines  int
}

// NewLineReader creates a LineReader over r
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{reader: bufio.NewReaderSize(r, readBufferSize)}
}

// Next returns the next line with its line ending removed. A final line
// without a trailing newline is still returned. At end of input Next
// returns io.EOF; any other error is a read failure.
func (lr *LineReader) Next() (string, error) {
	line, err := lr.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				return "", io.EOF
			}
		} else {
			return "", fmt.Errorf("failed to read line %d: %w", lr.lines+1, err)
		}
	}
	lr.lines++
	return TrimLineEnding(line), nil
}
