package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	// DefaultQueueName is the default queue name
	DefaultQueueName = "focusdock_page_jobs"
	// DefaultDLQName is the default dead letter queue name
	DefaultDLQName = "focusdock_page_jobs_dlq"
	// DefaultExchangeName is the default exchange name
	DefaultExchangeName = "focusdock_jobs"
	// DefaultDelayedExchangeName is the default delayed exchange name (requires plugin)
	DefaultDelayedExchangeName = "focusdock_jobs_delayed"

	jobsRoutingKey = "jobs"
	dlqRoutingKey  = "dlq"
)

// Topology names the exchanges and queues page jobs flow through. Jobs are
// published to Exchange (or DelayedExchange when they carry a future
// NotBefore) and land on Queue. Rejected jobs are dead-lettered to DLQ.
type Topology struct {
	Queue           string
	DLQ             string
	Exchange        string
	DelayedExchange string
}

// DefaultTopology is the layout shared by cmd/server and cmd/worker
func DefaultTopology() Topology {
	return Topology{
		Queue:           DefaultQueueName,
		DLQ:             DefaultDLQName,
		Exchange:        DefaultExchangeName,
		DelayedExchange: DefaultDelayedExchangeName,
	}
}

// RabbitMQQueue implements JobQueue using RabbitMQ
type RabbitMQQueue struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	logger   *zap.Logger
	topology Topology
	// delayed is false when the delayed message plugin is missing. Delayed
	// jobs then go to the direct exchange and are requeued until due.
	delayed bool
}

var (
	_ JobQueue  = (*RabbitMQQueue)(nil)
	_ DLQPurger = (*RabbitMQQueue)(nil)
)

// NewRabbitMQQueue dials amqpURL and declares DefaultTopology
func NewRabbitMQQueue(amqpURL string, logger *zap.Logger) (*RabbitMQQueue, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	q := &RabbitMQQueue{conn: conn, channel: ch, logger: logger, topology: DefaultTopology()}
	if err := q.declare(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare topology: %w", err)
	}
	return q, nil
}

// ConnectRabbitMQ retries NewRabbitMQQueue, doubling the wait from 2s up to 30s
func ConnectRabbitMQ(ctx context.Context, amqpURL string, maxRetries int, logger *zap.Logger) (*RabbitMQQueue, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	const (
		initialDelay = 2 * time.Second
		maxDelay     = 30 * time.Second
	)

	var lastErr error
	delay := initialDelay
	for attempt := 1; attempt <= maxRetries; attempt++ {
		q, err := NewRabbitMQQueue(amqpURL, logger)
		if err == nil {
			return q, nil
		}
		lastErr = err

		logger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Duration("retry_delay", delay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay = min(delay*2, maxDelay)
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, lastErr)
}

// declare creates the exchanges, queues and bindings. Declarations are
// idempotent so server and worker both run it.
func (q *RabbitMQQueue) declare() error {
	t := q.topology

	q.delayed = true
	if err := q.channel.ExchangeDeclare(t.DelayedExchange, "x-delayed-message", true, false, false, false,
		amqp.Table{"x-delayed-type": amqp.ExchangeDirect}); err != nil {
		q.delayed = false
		q.logger.Warn("delayed_message_exchange_not_available", zap.Error(err))
		// A failed declare closes the channel
		if q.channel.IsClosed() {
			ch, openErr := q.conn.Channel()
			if openErr != nil {
				return fmt.Errorf("failed to reopen channel: %w", openErr)
			}
			q.channel = ch
		}
	}

	if err := q.channel.ExchangeDeclare(t.Exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", t.Exchange, err)
	}

	queues := []struct {
		name string
		key  string
		args amqp.Table
	}{
		{name: t.DLQ, key: dlqRoutingKey},
		{name: t.Queue, key: jobsRoutingKey, args: amqp.Table{
			"x-dead-letter-exchange":    t.Exchange,
			"x-dead-letter-routing-key": dlqRoutingKey,
		}},
	}
	for _, qd := range queues {
		if _, err := q.channel.QueueDeclare(qd.name, true, false, false, false, qd.args); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", qd.name, err)
		}
		if err := q.channel.QueueBind(qd.name, qd.key, t.Exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s: %w", qd.name, err)
		}
	}

	if q.delayed {
		if err := q.channel.QueueBind(t.Queue, jobsRoutingKey, t.DelayedExchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s to delayed exchange: %w", t.Queue, err)
		}
	}
	return nil
}

// Enqueue adds a job to the queue
func (q *RabbitMQQueue) Enqueue(ctx context.Context, job *Job) error {
	publishing, exchangeName, err := q.publishing(job, time.Now())
	if err != nil {
		return err
	}

	if err := q.channel.PublishWithContext(ctx, exchangeName, jobsRoutingKey, false, false, publishing); err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}
	return nil
}

// publishing builds the AMQP message for job and picks the exchange. A
// future NotBefore goes through the delayed exchange when it exists.
func (q *RabbitMQQueue) publishing(job *Job, now time.Time) (amqp.Publishing, string, error) {
	body, err := json.Marshal(job)
	if err != nil {
		return amqp.Publishing{}, "", fmt.Errorf("failed to marshal job: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID.String(),
		Timestamp:    job.CreatedAt,
		Type:         string(job.Type),
	}

	if job.NotAfter != nil {
		if ttl := job.NotAfter.Sub(now); ttl > 0 {
			publishing.Expiration = strconv.FormatInt(ttl.Milliseconds(), 10)
		}
	}

	exchangeName := q.topology.Exchange
	if job.NotBefore != nil && q.delayed {
		if delay := job.NotBefore.Sub(now); delay > 0 {
			exchangeName = q.topology.DelayedExchange
			publishing.Headers = amqp.Table{"x-delay": delay.Milliseconds()}
		}
	}

	return publishing, exchangeName, nil
}

// Consume returns a channel of messages from the queue using async delivery
func (q *RabbitMQQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error) {
	// Consumers get their own channel
	consumeCh, err := q.conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create consumer channel: %w", err)
	}

	if err := consumeCh.Qos(prefetchCount, 0, false); err != nil {
		_ = consumeCh.Close()
		return nil, nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := consumeCh.Consume(
		q.topology.Queue,
		"",    // consumer tag (empty = auto-generate)
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = consumeCh.Close()
		return nil, nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	msgChan := make(chan *Message, prefetchCount)
	errChan := make(chan error, 1)

	go func() {
		defer close(msgChan)
		defer close(errChan)
		defer func() {
			_ = consumeCh.Close()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-deliveries:
				if !ok {
					errChan <- errors.New("delivery channel closed")
					return
				}

				var job Job
				if err := json.Unmarshal(delivery.Body, &job); err != nil {
					// Unreadable, straight to the DLQ
					_ = delivery.Nack(false, false)
					select {
					case errChan <- fmt.Errorf("failed to unmarshal job: %w", err):
					default:
					}
					continue
				}

				if job.IsExpired() {
					_ = delivery.Ack(false)
					continue
				}
				if !job.ShouldProcess() {
					_ = delivery.Nack(false, true)
					continue
				}

				msg := &Message{Job: &job, DeliveryTag: delivery.DeliveryTag, acker: consumeCh}
				select {
				case <-ctx.Done():
					_ = delivery.Nack(false, true)
					return
				case msgChan <- msg:
				}
			}
		}
	}()

	return msgChan, errChan, nil
}

// PurgeOlderThan drains dead-lettered jobs created before now-retention. The
// DLQ is FIFO, so it stops at the first younger job.
func (q *RabbitMQQueue) PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := time.Now().Add(-retention)
	purged := 0

	for {
		if err := ctx.Err(); err != nil {
			return purged, err
		}

		delivery, ok, err := q.channel.Get(q.topology.DLQ, false)
		if err != nil {
			return purged, fmt.Errorf("failed to read DLQ: %w", err)
		}
		if !ok {
			return purged, nil
		}

		created := delivery.Timestamp
		if created.IsZero() {
			var job Job
			if json.Unmarshal(delivery.Body, &job) == nil {
				created = job.CreatedAt
			}
		}

		if created.After(cutoff) {
			_ = delivery.Nack(false, true)
			return purged, nil
		}
		if err := delivery.Ack(false); err != nil {
			return purged, fmt.Errorf("failed to ack DLQ message: %w", err)
		}
		purged++
	}
}

// HealthCheck verifies the connection and channel are open
func (q *RabbitMQQueue) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if q.conn == nil || q.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	if q.channel == nil || q.channel.IsClosed() {
		return errors.New("rabbitmq channel is closed")
	}
	return nil
}

// Close closes the queue connection
func (q *RabbitMQQueue) Close() error {
	var err error
	if q.channel != nil {
		err = q.channel.Close()
	}
	if q.conn != nil {
		if closeErr := q.conn.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}
