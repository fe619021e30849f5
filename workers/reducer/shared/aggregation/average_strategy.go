package aggregation

import (
	"fmt"
	"strings"

	"github.com/tp-distribuidos-2c2025/streamagg/protocol/record"
)

// Average computes the arithmetic mean of float values; used for metrics.
// Values are added left to right in arrival order and divided once at the end.
type Average struct{}

func (Average) Name() string {
	return StrategyAverage
}

// Parse accepts what record.ParseFloat accepts, surrounding whitespace
// included.
func (Average) Parse(raw string) (float64, error) {
	v, err := record.ParseFloat(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", raw, err)
	}
	return v, nil
}

func (Average) Fold(acc Accumulator[float64], v float64) (Accumulator[float64], error) {
	acc.Sum += v
	acc.Count++
	return acc, nil
}

func (Average) Finalize(acc Accumulator[float64]) Aggregate[float64] {
	return Aggregate[float64]{Key: acc.Key, Count: acc.Count, Result: acc.Sum / float64(acc.Count)}
}

func (Average) Format(v float64) string {
	return record.FormatFloat(v)
}
