// Package aggregation defines the fold and finalize steps applied to each run
// of same-key records.
package aggregation

// Number is the numeric domain a strategy accumulates in.
type Number interface {
	~int64 | ~float64
}

// Accumulator is the running state for one key. It is only ever created
// together with its first value, so Count is at least 1.
type Accumulator[T Number] struct {
	Key   string
	Count int64
	Sum   T
}

// NewAccumulator starts the state for key with its first value.
func NewAccumulator[T Number](key string, first T) Accumulator[T] {
	return Accumulator[T]{Key: key, Count: 1, Sum: first}
}

// Aggregate is the finalized result for one key run.
type Aggregate[T Number] struct {
	Key    string
	Count  int64
	Result T
}

// Strategy folds values into an Accumulator and turns it into an Aggregate.
// Implementations hold no state; every method is a pure function of its
// arguments.
type Strategy[T Number] interface {
	// Name returns the strategy name, as used in configuration
	Name() string
	// Parse converts a wire value into the strategy's number domain
	Parse(raw string) (T, error)
	// Fold adds v to acc. On error acc must be discarded and the previous
	// state kept.
	Fold(acc Accumulator[T], v T) (Accumulator[T], error)
	// Finalize computes the externally visible result
	Finalize(acc Accumulator[T]) Aggregate[T]
	// Format renders a result for the wire
	Format(v T) string
}
