package workerqueue

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tp-distribuidos-2c2025/streamagg/shared/middleware"
)

const publishTimeout = 10 * time.Second

// QueueMiddleware publishes messages to a single work queue through the
// default exchange.
type QueueMiddleware struct {
	*middleware.MessageMiddlewareQueue
	ContentType string
}

// NewMessageMiddlewareQueue dials RabbitMQ and returns a producer for queueName,
// or nil if the connection could not be established.
func NewMessageMiddlewareQueue(queueName string, config *middleware.ConnectionConfig) *QueueMiddleware {
	conn, channel, err := middleware.CreateMiddlewareChannel(config)
	if err != nil {
		middleware.LogError("Queue Producer", "Failed to create channel for queue '%s': %v", queueName, err)
		return nil
	}

	producer := NewQueueMiddlewareWithChannel(queueName, channel)
	producer.Connection = conn
	return producer
}

// NewQueueMiddlewareWithChannel builds a producer over an already open channel.
func NewQueueMiddlewareWithChannel(queueName string, channel middleware.MiddlewareChannel) *QueueMiddleware {
	return &QueueMiddleware{
		MessageMiddlewareQueue: &middleware.MessageMiddlewareQueue{
			QueueName: queueName,
			Channel:   channel,
		},
		ContentType: "application/octet-stream",
	}
}

// Send publishes one persistent message to the queue.
func (m *QueueMiddleware) Send(message []byte) middleware.MessageMiddlewareError {
	if m.Channel == nil {
		return middleware.MessageMiddlewareDisconnectedError
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err := m.Channel.PublishWithContext(
		ctx,
		"",          // default exchange
		m.QueueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  m.ContentType,
			DeliveryMode: amqp.Persistent,
			Body:         message,
		},
	)
	if err != nil {
		middleware.LogError("Queue Producer", "Send to '%s' failed: %v", m.QueueName, err)
		return middleware.MessageMiddlewareMessageError
	}

	middleware.LogDebug("Queue Producer", "Sent %d bytes to '%s'", len(message), m.QueueName)
	return 0
}

// Close closes the channel and, if owned, the connection.
func (m *QueueMiddleware) Close() middleware.MessageMiddlewareError {
	if m.Channel == nil {
		return 0
	}

	err := m.Channel.Close()
	m.Channel = nil
	m.CloseConnection()
	if err != nil {
		middleware.LogError("Queue Producer", "Close error for queue '%s': %v", m.QueueName, err)
		return middleware.MessageMiddlewareCloseError
	}

	return 0
}
