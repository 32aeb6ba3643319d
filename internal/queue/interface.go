package queue

import (
	"context"
	"time"
)

// MessageInterface is a delivered job awaiting settlement. Workers depend on
// it rather than *Message so tests can hand them fakes.
type MessageInterface interface {
	Ack() error
	Nack(requeue bool) error
	GetJob() *Job
}

// JobQueue carries page analysis jobs from the API to the analyzer
type JobQueue interface {
	Enqueue(ctx context.Context, job *Job) error

	// Consume delivers jobs until ctx is cancelled or the source goes away,
	// then closes both channels. Every message must be acked or nacked.
	// prefetchCount caps the unsettled messages held at once.
	Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error)

	Close() error
	HealthCheck(ctx context.Context) error
}

// DLQPurger drops dead-lettered jobs older than retention and reports how many went
type DLQPurger interface {
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error)
}
