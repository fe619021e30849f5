package batch

import (
	"github.com/tp-distribuidos-2c2025/streamagg/protocol/record"
)

// Batch is a group of records published as one queue message. A batch with
// IsEOF set marks the end of the stream from SourceID; it may still carry
// records.
type Batch struct {
	SourceID    string
	BatchNumber int
	IsEOF       bool
	Records     []record.Record
}

// NewBatch creates a new Batch instance
func NewBatch(sourceID string, batchNumber int, isEOF bool, records []record.Record) *Batch {
	return &Batch{
		SourceID:    sourceID,
		BatchNumber: batchNumber,
		IsEOF:       isEOF,
		Records:     records,
	}
}
