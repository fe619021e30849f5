package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/tp-distribuidos-2c2025/streamagg/protocol/batch"
	"github.com/tp-distribuidos-2c2025/streamagg/shared/middleware"
	"github.com/tp-distribuidos-2c2025/streamagg/shared/middleware/workerqueue"
)

const componentName = "Reducer Worker"

// ErrStreamInterrupted is returned when the delivery channel closes before
// the end-of-stream batch arrives.
var ErrStreamInterrupted = errors.New("input queue closed before end of stream")

// BatchConsumer is the part of the queue consumer the worker needs.
type BatchConsumer interface {
	StartConsuming(onMessageCallback middleware.OnMessageCallback) middleware.MessageMiddlewareError
	Done() <-chan error
	Close() middleware.MessageMiddlewareError
}

// ReducerWorker encapsulates the reducer worker state and dependencies
type ReducerWorker struct {
	config    *ReducerConfig
	processor StreamProcessor
	input     io.Reader
	consumer  BatchConsumer
}

// NewReducerWorker creates a worker writing aggregates to output. Records
// are read from input, or from the configured RabbitMQ queue when one is set.
func NewReducerWorker(config *ReducerConfig, input io.Reader, output io.Writer) (*ReducerWorker, error) {
	processor, err := NewStreamProcessor(config.Strategy, config.ExpectedSources, output)
	if err != nil {
		return nil, err
	}

	worker := &ReducerWorker{
		config:    config,
		processor: processor,
		input:     input,
	}

	if config.UsesQueue() {
		connection := config.ConnectionConfig
		if err := middleware.WaitForConnection(connection, connection.ConnectRetries, connection.RetryInterval); err != nil {
			return nil, err
		}
		consumer := workerqueue.NewQueueConsumer(config.InputQueue, connection)
		if consumer == nil {
			return nil, fmt.Errorf("failed to create consumer for queue %q", config.InputQueue)
		}
		if code := consumer.DeclareQueue(true, false, false, false); code != 0 {
			consumer.Close()
			return nil, fmt.Errorf("failed to declare input queue %q: %w", config.InputQueue, code)
		}
		worker.consumer = consumer
	}

	return worker, nil
}

// Run reduces the whole input and returns once the last group is written.
func (w *ReducerWorker) Run() error {
	var err error
	if w.consumer != nil {
		err = w.runFromQueue()
	} else {
		err = w.processor.ProcessStream(w.input)
	}
	if err != nil {
		return err
	}

	stats := w.processor.Stats()
	middleware.LogInfo(componentName, "Reduced %d records into %d groups with %s (%d skipped, %d blank lines)",
		stats.Records, stats.Aggregates, w.config.Strategy, stats.Skipped, stats.Blank)
	return nil
}

// Close releases the queue consumer, if any.
func (w *ReducerWorker) Close() {
	if w.consumer != nil {
		w.consumer.Close()
	}
}

func (w *ReducerWorker) runFromQueue() error {
	if code := w.consumer.StartConsuming(w.consumeBatches); code != 0 {
		return fmt.Errorf("failed to start consuming from %q: %w", w.config.InputQueue, code)
	}
	return <-w.consumer.Done()
}

// consumeBatches folds deliveries until every expected source has ended. Batches
// that cannot be decoded are acked and dropped; an output failure requeues
// the delivery and stops the worker.
func (w *ReducerWorker) consumeBatches(deliveries middleware.ConsumeChannel, done chan error) {
	for delivery := range deliveries {
		eof, err := w.processor.ProcessBatch(delivery.Body)
		if errors.Is(err, batch.ErrInvalidBatch) {
			middleware.LogWarn(componentName, "Dropping undecodable delivery (%d bytes): %v", len(delivery.Body), err)
			if ackErr := delivery.Ack(false); ackErr != nil {
				middleware.LogError(componentName, "Failed to ack delivery: %v", ackErr)
			}
			continue
		}
		if err != nil {
			if nackErr := delivery.Nack(false, true); nackErr != nil {
				middleware.LogError(componentName, "Failed to nack delivery: %v", nackErr)
			}
			done <- err
			return
		}

		if ackErr := delivery.Ack(false); ackErr != nil {
			middleware.LogError(componentName, "Failed to ack delivery: %v", ackErr)
		}
		if eof {
			middleware.LogDebug(componentName, "End of stream received on '%s'", w.config.InputQueue)
			done <- nil
			return
		}
	}
	done <- ErrStreamInterrupted
}
