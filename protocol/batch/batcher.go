package batch

import (
	"fmt"

	"github.com/tp-distribuidos-2c2025/streamagg/protocol/record"
)

// PublishFunc delivers one serialized batch.
type PublishFunc func(data []byte) error

// Batcher groups records into batches of at most maxSize records and hands
// each serialized batch to publish, in order.
type Batcher struct {
	sourceID string
	maxSize  int
	publish  PublishFunc
	pending  []record.Record
	next     int
	closed   bool
}

// NewBatcher creates a Batcher; maxSize must be positive.
func NewBatcher(sourceID string, maxSize int, publish PublishFunc) (*Batcher, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", maxSize)
	}
	return &Batcher{
		sourceID: sourceID,
		maxSize:  maxSize,
		publish:  publish,
		pending:  make([]record.Record, 0, maxSize),
		next:     1,
	}, nil
}

// Add queues a record, publishing a full batch when maxSize is reached.
func (b *Batcher) Add(r record.Record) error {
	if b.closed {
		return fmt.Errorf("batcher for %q already closed", b.sourceID)
	}
	b.pending = append(b.pending, r)
	if len(b.pending) >= b.maxSize {
		return b.send(false)
	}
	return nil
}

// Close publishes the remaining records in a final batch flagged as EOF.
// An EOF batch is published even when nothing is pending.
func (b *Batcher) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	return b.send(true)
}

// Published returns how many batches have been handed to publish.
func (b *Batcher) Published() int {
	return b.next - 1
}

func (b *Batcher) send(isEOF bool) error {
	data := SerializeBatch(NewBatch(b.sourceID, b.next, isEOF, b.pending))
	if err := b.publish(data); err != nil {
		return fmt.Errorf("failed to publish batch %d: %w", b.next, err)
	}
	b.next++
	b.pending = b.pending[:0]
	return nil
}
