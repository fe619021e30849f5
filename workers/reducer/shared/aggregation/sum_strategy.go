package aggregation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tp-distribuidos-2c2025/streamagg/protocol/record"
)

// ErrOverflow is returned when an integer total would leave the int64 range.
var ErrOverflow = errors.New("integer overflow")

// Sum totals integer values; used for word counts.
type Sum struct{}

func (Sum) Name() string {
	return StrategySum
}

func (Sum) Parse(raw string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q: %w", raw, err)
	}
	return v, nil
}

func (Sum) Fold(acc Accumulator[int64], v int64) (Accumulator[int64], error) {
	if (v > 0 && acc.Sum > math.MaxInt64-v) || (v < 0 && acc.Sum < math.MinInt64-v) {
		return acc, fmt.Errorf("adding %d to %d for key %q: %w", v, acc.Sum, acc.Key, ErrOverflow)
	}
	acc.Sum += v
	acc.Count++
	return acc, nil
}

func (Sum) Finalize(acc Accumulator[int64]) Aggregate[int64] {
	return Aggregate[int64]{Key: acc.Key, Count: acc.Count, Result: acc.Sum}
}

func (Sum) Format(v int64) string {
	return record.FormatInt(v)
}
