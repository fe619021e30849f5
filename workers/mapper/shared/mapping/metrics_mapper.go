package mapping

import (
	"github.com/tp-distribuidos-2c2025/streamagg/shared/middleware"
	"github.com/tp-distribuidos-2c2025/streamagg/workers/mapper/shared/emitter"
	"github.com/tp-distribuidos-2c2025/streamagg/workers/mapper/shared/extractor"
)

// MetricsMapper emits one record per metric observation found in a log line.
type MetricsMapper struct {
	extractor *extractor.Extractor
}

// NewMetricsMapper creates a metrics mapper over the given extractor
func NewMetricsMapper(ext *extractor.Extractor) *MetricsMapper {
	return &MetricsMapper{extractor: ext}
}

func (m *MetricsMapper) Name() string {
	return KindMetrics
}

func (m *MetricsMapper) Map(line string, emit EmitFunc) error {
	result := m.extractor.Classify(line)
	if result.Kind != extractor.Unrecognized && len(result.Observations) == 0 {
		middleware.LogDebug("Metrics Mapper", "Dropping %s line with unparsable values: %q", result.Kind, line)
		return nil
	}

	for _, obs := range result.Observations {
		if err := emit(emitter.Observation(obs)); err != nil {
			return err
		}
	}
	return nil
}
