package main

import (
	"errors"
	"io"

	"github.com/tp-distribuidos-2c2025/streamagg/protocol/record"
	"github.com/tp-distribuidos-2c2025/streamagg/workers/mapper/shared/mapping"
)

// MapperProcessor runs a Mapper over every line of an input stream.
type MapperProcessor struct {
	mapper  mapping.Mapper
	lines   int64
	records int64
}

// NewMapperProcessor creates a processor for the given mapper
func NewMapperProcessor(mapper mapping.Mapper) *MapperProcessor {
	return &MapperProcessor{mapper: mapper}
}

// ProcessStream maps every line of r. After each input line endLine is
// called so buffered sinks can push that line's records downstream.
func (p *MapperProcessor) ProcessStream(r io.Reader, emit mapping.EmitFunc, endLine func() error) error {
	counted := func(rec record.Record) error {
		if err := emit(rec); err != nil {
			return err
		}
		p.records++
		return nil
	}

	lines := record.NewLineReader(r)
	for {
		line, err := lines.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		p.lines++

		if err := p.mapper.Map(line, counted); err != nil {
			return err
		}
		if endLine != nil {
			if err := endLine(); err != nil {
				return err
			}
		}
	}
}

// Lines returns the number of input lines processed.
func (p *MapperProcessor) Lines() int64 {
	return p.lines
}

// Records returns the number of records emitted.
func (p *MapperProcessor) Records() int64 {
	return p.records
}
