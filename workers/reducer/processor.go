package main

import (
	"fmt"
	"io"

	"github.com/tp-distribuidos-2c2025/streamagg/protocol/batch"
	"github.com/tp-distribuidos-2c2025/streamagg/protocol/record"
	"github.com/tp-distribuidos-2c2025/streamagg/shared/middleware"
	"github.com/tp-distribuidos-2c2025/streamagg/workers/reducer/shared/aggregation"
	"github.com/tp-distribuidos-2c2025/streamagg/workers/reducer/shared/grouping"
)

// StreamProcessor is the strategy-independent view of a ReducerProcessor.
type StreamProcessor interface {
	// ProcessStream folds a line stream until EOF and flushes the last group.
	ProcessStream(r io.Reader) error
	// ProcessBatch folds one serialized batch. It reports true once every
	// expected source has sent its end-of-stream batch and the last group
	// has been flushed.
	ProcessBatch(data []byte) (bool, error)
	Stats() grouping.Stats
}

// ReducerProcessor feeds records into a GroupingAggregator.
type ReducerProcessor[T aggregation.Number] struct {
	aggregator      *grouping.GroupingAggregator[T]
	expectedSources int
	lastBatch       map[string]int
	finished        map[string]bool
}

// NewReducerProcessor creates a processor folding with strategy and writing
// one "key\tresult" line per group to out. In batch mode the stream ends
// once expectedSources distinct sources have sent an EOF batch.
func NewReducerProcessor[T aggregation.Number](strategy aggregation.Strategy[T], expectedSources int, out io.Writer) *ReducerProcessor[T] {
	if expectedSources < 1 {
		expectedSources = 1
	}
	sink := grouping.WriterSink(record.NewWriter(out), strategy)
	return &ReducerProcessor[T]{
		aggregator:      grouping.New(strategy, sink),
		expectedSources: expectedSources,
		lastBatch:       make(map[string]int),
		finished:        make(map[string]bool),
	}
}

// NewStreamProcessor picks the processor for a normalized strategy name.
func NewStreamProcessor(strategy string, expectedSources int, out io.Writer) (StreamProcessor, error) {
	switch strategy {
	case aggregation.StrategySum:
		return NewReducerProcessor[int64](aggregation.Sum{}, expectedSources, out), nil
	case aggregation.StrategyAverage:
		return NewReducerProcessor[float64](aggregation.Average{}, expectedSources, out), nil
	default:
		return nil, fmt.Errorf("%w: %q", aggregation.ErrUnknownStrategy, strategy)
	}
}

func (p *ReducerProcessor[T]) ProcessStream(r io.Reader) error {
	return p.aggregator.Run(r)
}

func (p *ReducerProcessor[T]) ProcessBatch(data []byte) (bool, error) {
	b, err := batch.DeserializeBatch(data)
	if err != nil {
		return false, err
	}

	if p.finished[b.SourceID] {
		middleware.LogWarn(componentName, "Ignoring batch %d from '%s' after its end of stream", b.BatchNumber, b.SourceID)
		return false, nil
	}
	if last, seen := p.lastBatch[b.SourceID]; seen && b.BatchNumber != last+1 {
		middleware.LogWarn(componentName, "Batch %d from '%s' follows batch %d", b.BatchNumber, b.SourceID, last)
	}
	p.lastBatch[b.SourceID] = b.BatchNumber

	for _, rec := range b.Records {
		if err := p.aggregator.Consume(rec); err != nil {
			return false, err
		}
	}

	if !b.IsEOF {
		return false, nil
	}
	p.finished[b.SourceID] = true
	if len(p.finished) < p.expectedSources {
		middleware.LogDebug(componentName, "End of stream from '%s' (%d/%d sources)", b.SourceID, len(p.finished), p.expectedSources)
		return false, nil
	}
	if err := p.aggregator.Flush(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *ReducerProcessor[T]) Stats() grouping.Stats {
	return p.aggregator.Stats()
}
