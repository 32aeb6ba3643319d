// Package workers processes background jobs from the queue.
package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/benvon/focusdock/internal/logger"
	"github.com/benvon/focusdock/internal/models"
	"github.com/benvon/focusdock/internal/queue"
	"github.com/benvon/focusdock/internal/tasks"
)

// Precomputer fills the result cache for a page
type Precomputer interface {
	Precompute(ctx context.Context, page models.PageContent) error
}

// TaskGetter looks up the task a job was queued for
type TaskGetter interface {
	Get(ctx context.Context, id string) (models.Task, error)
}

// PageAnalyzer processes page analysis jobs
type PageAnalyzer struct {
	analysis  Precomputer
	tasks     TaskGetter
	jobQueue  queue.JobQueue // For re-enqueueing jobs with delays
	logger    *zap.Logger
	baseDelay time.Duration
}

// Option configures a PageAnalyzer
type Option func(*PageAnalyzer)

// WithTaskGetter makes the analyzer skip jobs whose task was deleted
func WithTaskGetter(g TaskGetter) Option {
	return func(a *PageAnalyzer) { a.tasks = g }
}

// WithRetryDelay sets the first retry delay. Each further retry doubles it.
func WithRetryDelay(d time.Duration) Option {
	return func(a *PageAnalyzer) { a.baseDelay = d }
}

// NewPageAnalyzer creates a new page analyzer
func NewPageAnalyzer(analysis Precomputer, jobQueue queue.JobQueue, zapLogger *zap.Logger, opts ...Option) *PageAnalyzer {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	a := &PageAnalyzer{
		analysis:  analysis,
		jobQueue:  jobQueue,
		logger:    zapLogger,
		baseDelay: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ProcessPageAnalysisJob precomputes the summary and keywords for the job's page
func (a *PageAnalyzer) ProcessPageAnalysisJob(ctx context.Context, job *queue.Job) error {
	if job.Page == nil {
		return errors.New("page is required for page analysis job")
	}

	if a.tasks != nil && job.TaskID != "" {
		if _, err := a.tasks.Get(ctx, job.TaskID); err != nil {
			if errors.Is(err, tasks.ErrTaskNotFound) {
				a.logger.Info("skipping_page_analysis_for_deleted_task",
					zap.String("job_id", job.ID.String()),
					zap.String("task_id", job.TaskID),
				)
				return nil
			}
			return fmt.Errorf("failed to get task: %w", err)
		}
	}

	if err := a.analysis.Precompute(ctx, *job.Page); err != nil {
		return fmt.Errorf("failed to analyze page: %w", err)
	}

	a.logger.Info("analyzed_page",
		zap.String("job_id", job.ID.String()),
		zap.String("task_id", job.TaskID),
		zap.String("url", logger.SanitizeURL(job.Page.URL)),
	)
	return nil
}

// ProcessJob processes a job based on its type
func (a *PageAnalyzer) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	if !job.ShouldProcess() {
		if job.IsExpired() {
			a.logger.Info("dropping_expired_job", zap.String("job_id", job.ID.String()))
			if ackErr := msg.Ack(); ackErr != nil {
				return fmt.Errorf("failed to ack expired job: %w", ackErr)
			}
			return nil
		}
		a.logger.Debug("job_not_ready_requeueing", zap.String("job_id", job.ID.String()))
		if nackErr := msg.Nack(true); nackErr != nil {
			return fmt.Errorf("failed to requeue job: %w", nackErr)
		}
		return nil
	}

	switch job.Type {
	case queue.JobTypePageAnalysis:
		if err := a.ProcessPageAnalysisJob(ctx, job); err != nil {
			return a.handleJobError(ctx, msg, job, err)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	default:
		// Unknown job type, send to DLQ
		if nackErr := msg.Nack(false); nackErr != nil {
			a.logger.Warn("failed_to_nack_unknown_job_type", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// retryDelay doubles baseDelay per attempt and caps at five minutes
func (a *PageAnalyzer) retryDelay(retryCount int) time.Duration {
	delay := a.baseDelay * time.Duration(1<<uint(min(retryCount, 16)))
	if delay > 5*time.Minute {
		delay = 5 * time.Minute
	}
	return delay
}

// handleJobError re-enqueues a failed job with a delay while it has retries
// left, and sends it to the DLQ once they run out
func (a *PageAnalyzer) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error) error {
	if !job.CanRetry() {
		a.logger.Error("page_analysis_job_failed_sending_to_dlq",
			zap.String("job_id", job.ID.String()),
			zap.Int("max_retries", job.MaxRetries),
			zap.Error(err),
		)
		if nackErr := msg.Nack(false); nackErr != nil {
			a.logger.Warn("failed_to_nack_job_to_dlq", zap.Error(nackErr))
		}
		return fmt.Errorf("job failed (max retries): %w", err)
	}

	retry := *job
	retry.IncrementRetry()
	notBefore := time.Now().Add(a.retryDelay(job.RetryCount))
	retry.NotBefore = &notBefore

	if a.jobQueue != nil {
		enqueueErr := a.jobQueue.Enqueue(ctx, &retry)
		if enqueueErr == nil {
			if ackErr := msg.Ack(); ackErr != nil {
				a.logger.Warn("failed_to_ack_job_after_re_enqueue", zap.Error(ackErr))
			}
			a.logger.Warn("page_analysis_job_failed_will_retry",
				zap.String("job_id", job.ID.String()),
				zap.Int("attempt", retry.RetryCount),
				zap.Int("max_retries", job.MaxRetries),
				zap.Time("not_before", notBefore),
				zap.Error(err),
			)
			return fmt.Errorf("job failed (will retry): %w", err)
		}
		a.logger.Warn("failed_to_re_enqueue_job", zap.String("job_id", job.ID.String()), zap.Error(enqueueErr))
	}

	// Without a queue to delay through, requeue as is
	if nackErr := msg.Nack(true); nackErr != nil {
		a.logger.Warn("failed_to_nack_job", zap.Error(nackErr))
	}
	return fmt.Errorf("job failed (requeued): %w", err)
}

// Run consumes jobs until ctx is cancelled or the queue closes its channels
func (a *PageAnalyzer) Run(ctx context.Context, prefetch int) error {
	if a.jobQueue == nil {
		return errors.New("page analyzer has no job queue")
	}

	msgChan, errChan, err := a.jobQueue.Consume(ctx, prefetch)
	if err != nil {
		return fmt.Errorf("failed to start consuming messages: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errChan:
			if !ok {
				errChan = nil
				continue
			}
			a.logger.Error("queue_error", zap.Error(err))
		case msg, ok := <-msgChan:
			if !ok {
				a.logger.Info("message_channel_closed")
				return nil
			}
			if err := a.ProcessJob(ctx, msg); err != nil {
				a.logger.Error("failed_to_process_job",
					zap.Error(err),
					zap.String("job_id", msg.GetJob().ID.String()),
					zap.String("job_type", string(msg.GetJob().Type)),
				)
			}
		}
	}
}
