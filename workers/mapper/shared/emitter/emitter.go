// Package emitter turns mapper outputs into wire records.
package emitter

import (
	"github.com/tp-distribuidos-2c2025/streamagg/protocol/record"
	"github.com/tp-distribuidos-2c2025/streamagg/workers/mapper/shared/extractor"
)

// TokenCount is the value emitted for every token occurrence.
const TokenCount = "1"

// Token returns the record counting one occurrence of tok.
func Token(tok string) record.Record {
	return record.New(tok, TokenCount)
}

// Observation returns the record carrying one metric value.
func Observation(o extractor.Observation) record.Record {
	return record.New(o.Metric, record.FormatFloat(o.Value))
}
