package workerqueue

import (
	"github.com/tp-distribuidos-2c2025/streamagg/shared/middleware"
)

const consumerTag = "streamagg-consumer"

// QueueConsumer wraps the middleware.MessageMiddlewareQueue with consumer methods
type QueueConsumer struct {
	*middleware.MessageMiddlewareQueue
	done chan error
}

// NewQueueConsumer dials RabbitMQ and returns a consumer for queueName,
// or nil if the connection could not be established.
func NewQueueConsumer(queueName string, config *middleware.ConnectionConfig) *QueueConsumer {
	conn, channel, err := middleware.CreateMiddlewareChannel(config)
	if err != nil {
		middleware.LogError("Queue Consumer", "Failed to create channel for queue '%s': %v", queueName, err)
		return nil
	}

	consumer := NewQueueConsumerWithChannel(queueName, channel)
	consumer.Connection = conn
	return consumer
}

// NewQueueConsumerWithChannel builds a consumer over an already open channel.
func NewQueueConsumerWithChannel(queueName string, channel middleware.MiddlewareChannel) *QueueConsumer {
	return &QueueConsumer{
		MessageMiddlewareQueue: &middleware.MessageMiddlewareQueue{
			QueueName: queueName,
			Channel:   channel,
		},
	}
}

// StartConsuming registers a manual-ack consumer and runs onMessageCallback
// in its own goroutine. The callback's result is available from Done.
func (m *QueueConsumer) StartConsuming(onMessageCallback middleware.OnMessageCallback) middleware.MessageMiddlewareError {
	if m.Channel == nil {
		return middleware.MessageMiddlewareDisconnectedError
	}

	deliveries, err := m.Channel.Consume(
		m.QueueName,
		consumerTag,
		false, // auto-ack (we'll handle acknowledgments manually)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		middleware.LogError("Queue Consumer", "Failed to start consuming for queue '%s': %v", m.QueueName, err)
		return middleware.MessageMiddlewareMessageError
	}

	m.ConsumeChannel = deliveries
	m.done = make(chan error, 1)

	go func() {
		middleware.LogDebug("Queue Consumer", "Starting consumer for queue '%s'", m.QueueName)
		onMessageCallback(m.ConsumeChannel, m.done)
	}()

	return 0
}

// Done returns the channel the running callback reports on, or nil if
// StartConsuming has not been called.
func (m *QueueConsumer) Done() <-chan error {
	return m.done
}

// StopConsuming cancels the consumer; the delivery channel is closed by the broker client.
func (m *QueueConsumer) StopConsuming() middleware.MessageMiddlewareError {
	if m.Channel == nil {
		return middleware.MessageMiddlewareDisconnectedError
	}

	if m.ConsumeChannel == nil {
		middleware.LogDebug("Queue Consumer", "Not consuming for queue '%s', StopConsuming has no effect", m.QueueName)
		return 0
	}

	if err := m.Channel.Cancel(consumerTag, false); err != nil {
		middleware.LogError("Queue Consumer", "Failed to cancel consumer for queue '%s': %v", m.QueueName, err)
		return middleware.MessageMiddlewareMessageError
	}

	m.ConsumeChannel = nil
	middleware.LogDebug("Queue Consumer", "Consumer halted for queue '%s'", m.QueueName)
	return 0
}

// Close stops consuming and closes the channel and owned connection.
func (m *QueueConsumer) Close() middleware.MessageMiddlewareError {
	if m.Channel == nil {
		return 0
	}

	if m.ConsumeChannel != nil {
		if stopErr := m.StopConsuming(); stopErr != 0 {
			middleware.LogError("Queue Consumer", "Error stopping consumption during close for queue '%s': %v", m.QueueName, stopErr)
		}
	}

	err := m.Channel.Close()
	m.Channel = nil
	m.CloseConnection()
	if err != nil {
		middleware.LogError("Queue Consumer", "Close error for queue '%s': %v", m.QueueName, err)
		return middleware.MessageMiddlewareCloseError
	}

	middleware.LogDebug("Queue Consumer", "Channel closed for queue '%s'", m.QueueName)
	return 0
}
