package mapping

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tp-distribuidos-2c2025/streamagg/workers/mapper/shared/extractor"
)

const (
	KindWordCount = "wordcount"
	KindMetrics   = "metrics"
)

// ErrUnknownMapper is returned for unsupported mapper kinds.
var ErrUnknownMapper = errors.New("unknown mapper kind")

// NewMapper creates a mapper for the specified kind
func NewMapper(kind string) (Mapper, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindWordCount:
		return NewWordCountMapper(), nil
	case KindMetrics:
		return NewMetricsMapper(extractor.Default()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMapper, kind)
	}
}
