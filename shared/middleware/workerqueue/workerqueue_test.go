package workerqueue

import (
	"context"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tp-distribuidos-2c2025/streamagg/shared/middleware"
)

type publishedMessage struct {
	key string
	msg amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	published  []publishedMessage
	deliveries chan amqp.Delivery
	cancelled  []string
	closed     bool
	publishErr error
	declareErr error
}

func (c *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	if c.declareErr != nil {
		return amqp.Queue{}, c.declareErr
	}
	c.declared = append(c.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.published = append(c.published, publishedMessage{key: key, msg: msg})
	return nil
}

func (c *fakeChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	return c.deliveries, nil
}

func (c *fakeChannel) Cancel(consumer string, noWait bool) error {
	c.cancelled = append(c.cancelled, consumer)
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestProducerSend(t *testing.T) {
	ch := &fakeChannel{}
	producer := NewQueueMiddlewareWithChannel("records", ch)

	require.Equal(t, middleware.MessageMiddlewareError(0), producer.DeclareQueue(true, false, false, false))
	require.Equal(t, middleware.MessageMiddlewareError(0), producer.Send([]byte("payload")))

	assert.Equal(t, []string{"records"}, ch.declared)
	require.Len(t, ch.published, 1)
	assert.Equal(t, "records", ch.published[0].key)
	assert.Equal(t, []byte("payload"), ch.published[0].msg.Body)
	assert.Equal(t, amqp.Persistent, ch.published[0].msg.DeliveryMode)
}

func TestProducerErrors(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed"), declareErr: errors.New("denied")}
	producer := NewQueueMiddlewareWithChannel("records", ch)

	assert.Equal(t, middleware.MessageMiddlewareMessageError, producer.DeclareQueue(true, false, false, false))
	assert.Equal(t, middleware.MessageMiddlewareMessageError, producer.Send([]byte("x")))

	assert.Equal(t, middleware.MessageMiddlewareError(0), producer.Close())
	assert.True(t, ch.closed)
	assert.Equal(t, middleware.MessageMiddlewareDisconnectedError, producer.Send([]byte("x")))
	assert.Equal(t, middleware.MessageMiddlewareError(0), producer.Close())
}

func TestConsumerDeliversAndStops(t *testing.T) {
	ch := &fakeChannel{deliveries: make(chan amqp.Delivery, 2)}
	ch.deliveries <- amqp.Delivery{Body: []byte("one")}
	ch.deliveries <- amqp.Delivery{Body: []byte("two")}
	close(ch.deliveries)

	consumer := NewQueueConsumerWithChannel("records", ch)
	assert.Nil(t, consumer.Done())

	var bodies []string
	code := consumer.StartConsuming(func(deliveries middleware.ConsumeChannel, done chan error) {
		for d := range deliveries {
			bodies = append(bodies, string(d.Body))
		}
		done <- nil
	})
	require.Equal(t, middleware.MessageMiddlewareError(0), code)

	require.NoError(t, <-consumer.Done())
	assert.Equal(t, []string{"one", "two"}, bodies)

	assert.Equal(t, middleware.MessageMiddlewareError(0), consumer.Close())
	assert.Equal(t, []string{consumerTag}, ch.cancelled)
	assert.True(t, ch.closed)
}

func TestConsumerWithoutChannel(t *testing.T) {
	consumer := NewQueueConsumerWithChannel("records", nil)

	code := consumer.StartConsuming(func(middleware.ConsumeChannel, chan error) {})
	assert.Equal(t, middleware.MessageMiddlewareDisconnectedError, code)
	assert.Equal(t, middleware.MessageMiddlewareError(0), consumer.Close())
}
