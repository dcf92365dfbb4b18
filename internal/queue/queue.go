// internal/queue/queue.go
package queue

import (
    "fmt"
    "sync"
    "time"

    "github.com/rs/zerolog"
)

// Queue decouples a trigger from the work it starts. Publish hands a
// payload to every subscriber of the topic and returns immediately; the
// handler runs as its own unit of work with no caller-held handle.
type Queue interface {
    Publish(topic string, payload any) error
    Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue runs handlers in-process, one goroutine per published job.
type InMemoryQueue struct {
    mu       sync.Mutex
    handlers map[string][]func(payload any) error
    log      zerolog.Logger
}

func NewInMemoryQueue(log zerolog.Logger) *InMemoryQueue {
    return &InMemoryQueue{
        handlers: make(map[string][]func(payload any) error),
        log:      log,
    }
}

type job struct {
    payload    any
    retryCount int
    maxRetries int
}

func (q *InMemoryQueue) Publish(topic string, payload any) error {
    q.mu.Lock()
    handlers := q.handlers[topic]
    q.mu.Unlock()

    if len(handlers) == 0 {
        return fmt.Errorf("no subscribers for topic %s", topic)
    }

    j := job{payload: payload, maxRetries: 3}
    for _, handler := range handlers {
        go q.processJob(topic, handler, j)
    }
    return nil
}

// processJob retries transient handler failures with linear backoff
// before giving up.
func (q *InMemoryQueue) processJob(topic string, handler func(payload any) error, j job) {
    for j.retryCount <= j.maxRetries {
        err := handler(j.payload)
        if err == nil {
            return
        }

        j.retryCount++
        q.log.Warn().Err(err).
            Str("topic", topic).
            Int("attempt", j.retryCount).
            Int("max_retries", j.maxRetries).
            Msg("queue job failed")

        if j.retryCount > j.maxRetries {
            q.log.Error().
                Str("topic", topic).
                Msgf("queue job permanently failed after %d attempts", j.maxRetries)
            return
        }

        time.Sleep(time.Duration(j.retryCount*500) * time.Millisecond)
    }
}

func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
    q.mu.Lock()
    defer q.mu.Unlock()
    q.handlers[topic] = append(q.handlers[topic], handler)
    return nil
}

var _ Queue = (*InMemoryQueue)(nil)
