// internal/queue/amqp.go
package queue

import (
    "encoding/json"
    "fmt"

    "github.com/rs/zerolog"
    "github.com/streadway/amqp"
)

// maxDeliveryRetries bounds how often a failing job is redelivered,
// mirroring the in-memory queue's retry policy.
const maxDeliveryRetries = 3

// AMQPQueue carries jobs over RabbitMQ so dispatch runs can execute in a
// separate worker process. Payloads cross the broker as JSON; subscribers
// receive the raw bytes.
type AMQPQueue struct {
    conn *amqp.Connection
    ch   *amqp.Channel
    log  zerolog.Logger

    publish func(topic string, msg amqp.Publishing) error
}

func NewAMQPQueue(url string, log zerolog.Logger) (*AMQPQueue, error) {
    conn, err := amqp.Dial(url)
    if err != nil {
        return nil, fmt.Errorf("amqp dial: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        conn.Close()
        return nil, fmt.Errorf("amqp channel: %w", err)
    }
    q := &AMQPQueue{conn: conn, ch: ch, log: log}
    q.publish = func(topic string, msg amqp.Publishing) error {
        return ch.Publish("", topic, false, false, msg)
    }
    return q, nil
}

func (q *AMQPQueue) declare(topic string) (amqp.Queue, error) {
    return q.ch.QueueDeclare(
        topic,
        true,  // durable
        false, // delete when unused
        false, // exclusive
        false, // no-wait
        nil,
    )
}

func (q *AMQPQueue) Publish(topic string, payload any) error {
    declared, err := q.declare(topic)
    if err != nil {
        return err
    }

    body, err := json.Marshal(payload)
    if err != nil {
        return err
    }

    return q.publish(declared.Name, amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Body:         body,
    })
}

// Subscribe consumes the topic's queue and feeds each delivery's body to
// the handler. A handler error republishes the message with an incremented
// retry counter, up to maxDeliveryRetries attempts after the first.
func (q *AMQPQueue) Subscribe(topic string, handler func(payload any) error) error {
    declared, err := q.declare(topic)
    if err != nil {
        return err
    }

    deliveries, err := q.ch.Consume(
        declared.Name,
        "",
        false, // manual ack
        false,
        false,
        false,
        nil,
    )
    if err != nil {
        return err
    }

    go func() {
        for d := range deliveries {
            q.process(topic, d, handler)
        }
    }()
    return nil
}

// process runs one delivery through the handler. A Nack requeue would
// redeliver the message with its headers untouched, so the retry counter
// could never advance; instead a failed job is republished with the
// counter incremented and the original is always acked.
func (q *AMQPQueue) process(topic string, d amqp.Delivery, handler func(payload any) error) {
    if err := handler(d.Body); err != nil {
        retries := retryCount(d.Headers)
        if retries < maxDeliveryRetries {
            q.log.Warn().Err(err).
                Str("topic", topic).
                Int32("attempt", retries+1).
                Msg("amqp job failed, requeueing")
            if pubErr := q.publish(topic, amqp.Publishing{
                ContentType:  "application/json",
                DeliveryMode: amqp.Persistent,
                Headers:      amqp.Table{"x-retry-count": retries + 1},
                Body:         d.Body,
            }); pubErr != nil {
                q.log.Error().Err(pubErr).Str("topic", topic).Msg("amqp retry publish failed, requeueing in place")
                d.Nack(false, true)
                return
            }
        } else {
            q.log.Error().Err(err).Str("topic", topic).Msg("amqp job permanently failed")
        }
    }
    d.Ack(false)
}

func retryCount(headers amqp.Table) int32 {
    if headers == nil {
        return 0
    }
    if v, ok := headers["x-retry-count"].(int32); ok {
        return v
    }
    return 0
}

func (q *AMQPQueue) Close() error {
    if err := q.ch.Close(); err != nil {
        return err
    }
    return q.conn.Close()
}

var _ Queue = (*AMQPQueue)(nil)
