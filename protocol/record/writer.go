package record

import (
	"fmt"
	"io"
)

// Writer serializes records to an io.Writer. Each call results in exactly one
// Write on the underlying writer so downstream pipeline stages see every
// record as soon as it is produced.
type Writer struct {
	out io.Writer
	buf []byte
}

// NewWriter creates a Writer over out
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out, buf: make([]byte, 0, 256)}
}

// Write emits "key\tvalue\n".
func (w *Writer) Write(key, value string) error {
	return w.WriteRecord(Record{Key: key, Value: value})
}

// WriteRecord emits one record line.
func (w *Writer) WriteRecord(r Record) error {
	w.buf = r.AppendLine(w.buf[:0])
	if _, err := w.out.Write(w.buf); err != nil {
		return fmt.Errorf("failed to write record for key %q: %w", r.Key, err)
	}
	return nil
}
