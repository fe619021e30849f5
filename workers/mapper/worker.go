package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/tp-distribuidos-2c2025/streamagg/protocol/batch"
	"github.com/tp-distribuidos-2c2025/streamagg/protocol/record"
	"github.com/tp-distribuidos-2c2025/streamagg/shared/middleware"
	"github.com/tp-distribuidos-2c2025/streamagg/shared/middleware/workerqueue"
	"github.com/tp-distribuidos-2c2025/streamagg/workers/mapper/shared/mapping"
)

const componentName = "Mapper Worker"

// BatchPublisher is the part of the queue producer the worker needs.
type BatchPublisher interface {
	Send(message []byte) middleware.MessageMiddlewareError
	Close() middleware.MessageMiddlewareError
}

// MapperWorker encapsulates the mapper worker state and dependencies
type MapperWorker struct {
	config    *MapperConfig
	processor *MapperProcessor
	input     io.Reader
	output    io.Writer
	publisher BatchPublisher
}

// NewMapperWorker creates a worker reading input. Records go to output, or
// to the configured RabbitMQ queue when one is set.
func NewMapperWorker(config *MapperConfig, input io.Reader, output io.Writer) (*MapperWorker, error) {
	mapper, err := mapping.NewMapper(config.Kind)
	if err != nil {
		return nil, err
	}

	worker := &MapperWorker{
		config:    config,
		processor: NewMapperProcessor(mapper),
		input:     input,
		output:    output,
	}

	if config.UsesQueue() {
		connection := config.ConnectionConfig
		if err := middleware.WaitForConnection(connection, connection.ConnectRetries, connection.RetryInterval); err != nil {
			return nil, err
		}
		producer := workerqueue.NewMessageMiddlewareQueue(config.OutputQueue, connection)
		if producer == nil {
			return nil, fmt.Errorf("failed to create producer for queue %q", config.OutputQueue)
		}
		if code := producer.DeclareQueue(true, false, false, false); code != 0 {
			producer.Close()
			return nil, fmt.Errorf("failed to declare output queue %q: %w", config.OutputQueue, code)
		}
		worker.publisher = producer
	}

	return worker, nil
}

// Run maps the whole input stream and returns once it is exhausted.
func (w *MapperWorker) Run() error {
	var err error
	if w.publisher != nil {
		err = w.runToQueue()
	} else {
		err = w.runToOutput()
	}
	if err != nil {
		return err
	}

	middleware.LogInfo(componentName, "Mapped %d lines into %d records (%s)",
		w.processor.Lines(), w.processor.Records(), w.config.Kind)
	return nil
}

// Close releases the queue producer, if any.
func (w *MapperWorker) Close() {
	if w.publisher != nil {
		w.publisher.Close()
	}
}

// runToOutput writes records to the output stream, flushing after every
// input line so downstream stages see records as they are produced.
func (w *MapperWorker) runToOutput() error {
	buffered := bufio.NewWriter(w.output)
	writer := record.NewWriter(buffered)

	flush := func() error {
		if err := buffered.Flush(); err != nil {
			return fmt.Errorf("failed to flush output: %w", err)
		}
		return nil
	}

	if err := w.processor.ProcessStream(w.input, writer.WriteRecord, flush); err != nil {
		return err
	}
	return flush()
}

func (w *MapperWorker) runToQueue() error {
	batcher, err := batch.NewBatcher(w.config.SourceID, w.config.BatchSize, func(data []byte) error {
		if code := w.publisher.Send(data); code != 0 {
			return code
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := w.processor.ProcessStream(w.input, batcher.Add, nil); err != nil {
		return err
	}
	if err := batcher.Close(); err != nil {
		return err
	}

	middleware.LogDebug(componentName, "Published %d batches to '%s'", batcher.Published(), w.config.OutputQueue)
	return nil
}
