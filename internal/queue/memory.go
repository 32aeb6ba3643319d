package queue

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrQueueClosed is returned by Enqueue after Close
var ErrQueueClosed = errors.New("queue closed")

// MemoryQueue is an in-process JobQueue used when no broker is configured.
// Jobs with a future NotBefore are held back until then. Nack with requeue
// puts the job back at the tail; Nack without requeue moves it to the
// dead-letter list.
type MemoryQueue struct {
	mu       sync.Mutex
	jobs     chan *Job
	inflight map[uint64]*Job
	dead     []deadLetter
	nextTag  uint64
	closed   bool
	done     chan struct{}
	now      func() time.Time
}

type deadLetter struct {
	job *Job
	at  time.Time
}

var (
	_ JobQueue  = (*MemoryQueue)(nil)
	_ DLQPurger = (*MemoryQueue)(nil)
)

// NewMemoryQueue creates a queue holding up to capacity pending jobs
func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryQueue{
		jobs:     make(chan *Job, capacity),
		inflight: make(map[uint64]*Job),
		done:     make(chan struct{}),
		now:      time.Now,
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, job *Job) error {
	q.mu.Lock()
	closed := q.closed
	q.mu.Unlock()
	if closed {
		return ErrQueueClosed
	}

	if job.NotBefore != nil {
		if delay := time.Until(*job.NotBefore); delay > 0 {
			time.AfterFunc(delay, func() {
				select {
				case <-q.done:
				case q.jobs <- job:
				}
			})
			return nil
		}
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return ErrQueueClosed
	case q.jobs <- job:
		return nil
	}
}

func (q *MemoryQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error) {
	if prefetchCount <= 0 {
		prefetchCount = 1
	}
	msgChan := make(chan *Message, prefetchCount)
	errChan := make(chan error, 1)

	go func() {
		defer close(msgChan)
		defer close(errChan)

		for {
			select {
			case <-ctx.Done():
				return
			case <-q.done:
				return
			case job := <-q.jobs:
				if job.IsExpired() {
					continue
				}
				msg := &Message{Job: job, DeliveryTag: q.track(job), acker: q}
				select {
				case <-ctx.Done():
					_ = msg.Nack(true)
					return
				case msgChan <- msg:
				}
			}
		}
	}()

	return msgChan, errChan, nil
}

func (q *MemoryQueue) track(job *Job) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextTag++
	q.inflight[q.nextTag] = job
	return q.nextTag
}

// Ack settles a delivery
func (q *MemoryQueue) Ack(tag uint64, _ bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.inflight, tag)
	return nil
}

// Nack requeues or dead-letters a delivery
func (q *MemoryQueue) Nack(tag uint64, _ bool, requeue bool) error {
	q.mu.Lock()
	job, ok := q.inflight[tag]
	delete(q.inflight, tag)
	if !ok {
		q.mu.Unlock()
		return nil
	}
	if !requeue || q.closed {
		q.deadLetterLocked(job)
		q.mu.Unlock()
		return nil
	}
	q.mu.Unlock()

	select {
	case q.jobs <- job:
	default:
		q.mu.Lock()
		q.deadLetterLocked(job)
		q.mu.Unlock()
	}
	return nil
}

func (q *MemoryQueue) deadLetterLocked(job *Job) {
	q.dead = append(q.dead, deadLetter{job: job, at: q.now()})
}

// DeadLetters returns the jobs rejected without requeue, oldest first
func (q *MemoryQueue) DeadLetters() []*Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	jobs := make([]*Job, len(q.dead))
	for i, d := range q.dead {
		jobs[i] = d.job
	}
	return jobs
}

// PurgeOlderThan drops dead letters that have been parked longer than retention
func (q *MemoryQueue) PurgeOlderThan(_ context.Context, retention time.Duration) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	cutoff := q.now().Add(-retention)
	kept := q.dead[:0]
	for _, d := range q.dead {
		if d.at.After(cutoff) {
			kept = append(kept, d)
		}
	}
	purged := len(q.dead) - len(kept)
	clear(q.dead[len(kept):])
	q.dead = kept
	return purged, nil
}

func (q *MemoryQueue) HealthCheck(context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	return nil
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.done)
	}
	return nil
}
