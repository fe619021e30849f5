package aggregation

import (
	"errors"
	"fmt"
	"strings"
)

const (
	StrategySum     = "sum"
	StrategyAverage = "average"
)

// ErrUnknownStrategy is returned for unsupported strategy names.
var ErrUnknownStrategy = errors.New("unknown aggregation strategy")

// Lookup normalizes a configured strategy name. "count" is accepted for sum
// and "avg"/"mean" for average.
func Lookup(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case StrategySum, "count":
		return StrategySum, nil
	case StrategyAverage, "avg", "mean":
		return StrategyAverage, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
