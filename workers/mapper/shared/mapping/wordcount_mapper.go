package mapping

import (
	"github.com/tp-distribuidos-2c2025/streamagg/workers/mapper/shared/emitter"
	"github.com/tp-distribuidos-2c2025/streamagg/workers/mapper/shared/tokenizer"
)

// WordCountMapper emits "<token>\t1" for every word of a line.
type WordCountMapper struct{}

// NewWordCountMapper creates a new word count mapper
func NewWordCountMapper() *WordCountMapper {
	return &WordCountMapper{}
}

func (m *WordCountMapper) Name() string {
	return KindWordCount
}

func (m *WordCountMapper) Map(line string, emit EmitFunc) error {
	for tok := range tokenizer.Tokens(line) {
		if err := emit(emitter.Token(tok)); err != nil {
			return err
		}
	}
	return nil
}
