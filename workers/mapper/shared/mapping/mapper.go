package mapping

import (
	"github.com/tp-distribuidos-2c2025/streamagg/protocol/record"
)

// EmitFunc receives every record a mapper produces. Its error is an output
// failure and aborts the stream.
type EmitFunc func(record.Record) error

// Mapper turns one input line into zero or more records.
type Mapper interface {
	// Name returns the mapper kind, as used in configuration
	Name() string
	// Map emits the records for line. It only fails when emit fails.
	Map(line string, emit EmitFunc) error
}
