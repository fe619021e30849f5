package middleware

import (
	"context"
	"fmt"
	"io"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageMiddlewareError is the status code returned by queue operations.
// Zero means success.
type MessageMiddlewareError int

const (
	MessageMiddlewareMessageError MessageMiddlewareError = iota + 1
	MessageMiddlewareDisconnectedError
	MessageMiddlewareCloseError
)

func (e MessageMiddlewareError) Error() string {
	switch e {
	case 0:
		return "ok"
	case MessageMiddlewareMessageError:
		return "message error"
	case MessageMiddlewareDisconnectedError:
		return "disconnected"
	case MessageMiddlewareCloseError:
		return "close error"
	default:
		return fmt.Sprintf("middleware error %d", int(e))
	}
}

// MiddlewareChannel is the subset of *amqp.Channel the work queues use.
type MiddlewareChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Cancel(consumer string, noWait bool) error
	Close() error
}

// ConsumeChannel is the delivery stream handed to consumer callbacks.
type ConsumeChannel <-chan amqp.Delivery

// OnMessageCallback drains a ConsumeChannel and reports completion on done.
type OnMessageCallback func(consumeChannel ConsumeChannel, done chan error)

// MessageMiddlewareQueue holds the state shared by queue producers and consumers.
type MessageMiddlewareQueue struct {
	QueueName      string
	Channel        MiddlewareChannel
	Connection     io.Closer
	ConsumeChannel ConsumeChannel
}

// CloseConnection closes the underlying connection if the queue owns one.
func (q *MessageMiddlewareQueue) CloseConnection() {
	if q.Connection == nil {
		return
	}
	if err := q.Connection.Close(); err != nil {
		LogDebug("Middleware", "Connection close for queue '%s' returned: %v", q.QueueName, err)
	}
	q.Connection = nil
}

// DeclareQueue declares the queue on the RabbitMQ server.
// Parameters:
//   - durable: If true, the queue will survive server restarts
//   - autoDelete: If true, the queue will be deleted when no longer used
//   - exclusive: If true, the queue can only be used by one connection
//   - noWait: If true, don't wait for a server response
func (q *MessageMiddlewareQueue) DeclareQueue(durable, autoDelete, exclusive, noWait bool) MessageMiddlewareError {
	if q.Channel == nil {
		return MessageMiddlewareDisconnectedError
	}

	if _, err := q.Channel.QueueDeclare(q.QueueName, durable, autoDelete, exclusive, noWait, nil); err != nil {
		LogError("Middleware", "Failed to declare queue '%s': %v", q.QueueName, err)
		return MessageMiddlewareMessageError
	}

	LogDebug("Middleware", "Queue '%s' declared (durable: %t)", q.QueueName, durable)
	return 0
}
