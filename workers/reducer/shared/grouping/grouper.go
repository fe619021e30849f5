// Package grouping folds a key-clustered record stream into one aggregate per
// run of identical keys.
//
// The input must keep all records of a key contiguous; it does not need to be
// sorted. A key that reappears after a different key starts a new run and is
// emitted again. Only one Accumulator is alive at any time, so memory does
// not grow with the number of keys.
package grouping

import (
	"errors"
	"fmt"
	"io"

	"github.com/tp-distribuidos-2c2025/streamagg/protocol/record"
	"github.com/tp-distribuidos-2c2025/streamagg/shared/middleware"
	"github.com/tp-distribuidos-2c2025/streamagg/workers/reducer/shared/aggregation"
)

const component = "Grouping Aggregator"

// EmitFunc receives each finalized aggregate. An error is fatal for the stream.
type EmitFunc[T aggregation.Number] func(agg aggregation.Aggregate[T]) error

// Stats counts what happened to the input.
type Stats struct {
	Lines      int64 // lines handed to ConsumeLine
	Blank      int64 // blank lines ignored
	Records    int64 // records folded into an accumulator
	Skipped    int64 // malformed records, unparsable values, overflows
	Aggregates int64 // aggregates emitted
}

// GroupingAggregator owns the single live Accumulator of a stream.
type GroupingAggregator[T aggregation.Number] struct {
	strategy aggregation.Strategy[T]
	emit     EmitFunc[T]
	current  aggregation.Accumulator[T]
	live     bool
	stats    Stats
}

// New creates an aggregator that folds with strategy and hands every
// finalized group to emit.
func New[T aggregation.Number](strategy aggregation.Strategy[T], emit EmitFunc[T]) *GroupingAggregator[T] {
	return &GroupingAggregator[T]{strategy: strategy, emit: emit}
}

// WriterSink returns an EmitFunc writing "key\tresult\n" to w, formatted by
// the strategy.
func WriterSink[T aggregation.Number](w *record.Writer, strategy aggregation.Strategy[T]) EmitFunc[T] {
	return func(agg aggregation.Aggregate[T]) error {
		return w.Write(agg.Key, strategy.Format(agg.Result))
	}
}

// Consume folds one record. Records whose value does not parse, or whose
// fold fails, are dropped without touching the live accumulator. The only
// returned errors come from emit.
func (g *GroupingAggregator[T]) Consume(rec record.Record) error {
	v, err := g.strategy.Parse(rec.Value)
	if err != nil {
		g.skip("Skipping record for key %q: %v", rec.Key, err)
		return nil
	}

	if !g.live {
		g.start(rec.Key, v)
		return nil
	}

	if rec.Key == g.current.Key {
		next, err := g.strategy.Fold(g.current, v)
		if err != nil {
			g.skip("Skipping record: %v", err)
			return nil
		}
		g.current = next
		g.stats.Records++
		return nil
	}

	if err := g.Flush(); err != nil {
		return err
	}
	g.start(rec.Key, v)
	return nil
}

// ConsumeLine parses one wire line and folds it. Blank lines are ignored and
// lines without a tab are dropped.
func (g *GroupingAggregator[T]) ConsumeLine(line string) error {
	g.stats.Lines++

	line = record.TrimLineEnding(line)
	if record.IsBlank(line) {
		g.stats.Blank++
		return nil
	}

	rec, err := record.Parse(line)
	if err != nil {
		g.skip("Skipping line %d: %v", g.stats.Lines, err)
		return nil
	}
	return g.Consume(rec)
}

// Flush emits the live accumulator, if any, and clears it. It must be called
// once the input is exhausted; calling it with nothing pending is a no-op.
func (g *GroupingAggregator[T]) Flush() error {
	if !g.live {
		return nil
	}

	agg := g.strategy.Finalize(g.current)
	g.live = false
	g.current = aggregation.Accumulator[T]{}

	if err := g.emit(agg); err != nil {
		return fmt.Errorf("failed to emit aggregate for key %q: %w", agg.Key, err)
	}
	g.stats.Aggregates++
	return nil
}

// Run consumes r line by line until EOF and then flushes the last group.
// A read or emit failure stops the run immediately without a final flush.
func (g *GroupingAggregator[T]) Run(r io.Reader) error {
	lines := record.NewLineReader(r)
	for {
		line, err := lines.Next()
		if errors.Is(err, io.EOF) {
			return g.Flush()
		}
		if err != nil {
			return err
		}
		if err := g.ConsumeLine(line); err != nil {
			return err
		}
	}
}

// pending returns a copy of the live accumulator and whether one exists.
func (g *GroupingAggregator[T]) pending() (aggregation.Accumulator[T], bool) {
	return g.current, g.live
}

// Stats returns the counters collected so far.
func (g *GroupingAggregator[T]) Stats() Stats {
	return g.stats
}

func (g *GroupingAggregator[T]) start(key string, first T) {
	g.current = aggregation.NewAccumulator(key, first)
	g.live = true
	g.stats.Records++
}

func (g *GroupingAggregator[T]) skip(format string, args ...interface{}) {
	g.stats.Skipped++
	middleware.LogDebug(component, format, args...)
}
