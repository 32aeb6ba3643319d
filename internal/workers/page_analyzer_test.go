package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/benvon/focusdock/internal/analysis"
	"github.com/benvon/focusdock/internal/cache"
	"github.com/benvon/focusdock/internal/models"
	"github.com/benvon/focusdock/internal/pagetext"
	"github.com/benvon/focusdock/internal/queue"
	"github.com/benvon/focusdock/internal/tasks"
)

// mockPrecomputer is a mock implementation of Precomputer
type mockPrecomputer struct {
	mu    sync.Mutex
	calls []models.PageContent
	err   error
}

func (m *mockPrecomputer) Precompute(_ context.Context, page models.PageContent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, page)
	return m.err
}

func (m *mockPrecomputer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockTaskGetter is a mock implementation of TaskGetter
type mockTaskGetter struct {
	getFunc func(ctx context.Context, id string) (models.Task, error)
}

func (m *mockTaskGetter) Get(ctx context.Context, id string) (models.Task, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return models.Task{ID: id}, nil
}

// mockJobQueue is a mock implementation of JobQueue
type mockJobQueue struct {
	enqueueFunc func(ctx context.Context, job *queue.Job) error
}

func (m *mockJobQueue) Enqueue(ctx context.Context, job *queue.Job) error {
	if m.enqueueFunc != nil {
		return m.enqueueFunc(ctx, job)
	}
	return nil
}

func (m *mockJobQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}

func (m *mockJobQueue) Close() error {
	return nil
}

func (m *mockJobQueue) HealthCheck(ctx context.Context) error {
	return nil
}

// Ensure mock implements interface
var _ queue.JobQueue = (*mockJobQueue)(nil)

// mockMessage is a mock implementation of MessageInterface
type mockMessage struct {
	job     *queue.Job
	acked   bool
	nacked  bool
	requeue bool
}

func (m *mockMessage) Ack() error {
	m.acked = true
	return nil
}

func (m *mockMessage) Nack(requeue bool) error {
	m.nacked = true
	m.requeue = requeue
	return nil
}

func (m *mockMessage) GetJob() *queue.Job {
	return m.job
}

// Ensure mock implements interface
var _ queue.MessageInterface = (*mockMessage)(nil)

func timePtr(t time.Time) *time.Time {
	return &t
}

func pageJob() *queue.Job {
	return queue.NewPageAnalysisJob("task-a", models.PageContent{URL: "https://go.dev", Text: "text"})
}

func TestPageAnalyzer_ProcessJob(t *testing.T) {
	t.Parallel()

	analysisErr := errors.New("boom")

	tests := []struct {
		name          string
		job           func() *queue.Job
		analysisErr   error
		tasks         TaskGetter
		enqueueErr    error
		expectError   bool
		expectAck     bool
		expectNack    bool
		expectRequeue bool
		expectCalls   int
		expectRetry   bool
	}{
		{
			name:        "page analysis job",
			job:         pageJob,
			expectAck:   true,
			expectCalls: 1,
		},
		{
			name: "unknown job type",
			job: func() *queue.Job {
				return &queue.Job{ID: uuid.New(), Type: queue.JobType("unknown")}
			},
			expectError: true,
			expectNack:  true,
		},
		{
			name: "missing page goes through retry",
			job: func() *queue.Job {
				j := pageJob()
				j.Page = nil
				return j
			},
			expectError: true,
			expectAck:   true,
			expectRetry: true,
		},
		{
			name: "job not ready yet",
			job: func() *queue.Job {
				j := pageJob()
				j.NotBefore = timePtr(time.Now().Add(time.Hour))
				return j
			},
			expectNack:    true,
			expectRequeue: true,
		},
		{
			name: "expired job is dropped",
			job: func() *queue.Job {
				j := pageJob()
				j.NotAfter = timePtr(time.Now().Add(-time.Hour))
				return j
			},
			expectAck: true,
		},
		{
			name: "deleted task is skipped",
			job:  pageJob,
			tasks: &mockTaskGetter{getFunc: func(context.Context, string) (models.Task, error) {
				return models.Task{}, tasks.ErrTaskNotFound
			}},
			expectAck: true,
		},
		{
			name:        "failure with retries left re-enqueues",
			job:         pageJob,
			analysisErr: analysisErr,
			expectError: true,
			expectAck:   true,
			expectCalls: 1,
			expectRetry: true,
		},
		{
			name:          "failed re-enqueue falls back to requeue",
			job:           pageJob,
			analysisErr:   analysisErr,
			enqueueErr:    errors.New("broker down"),
			expectError:   true,
			expectNack:    true,
			expectRequeue: true,
			expectCalls:   1,
		},
		{
			name: "failure without retries goes to DLQ",
			job: func() *queue.Job {
				j := pageJob()
				j.RetryCount = j.MaxRetries
				return j
			},
			analysisErr: analysisErr,
			expectError: true,
			expectNack:  true,
			expectCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pre := &mockPrecomputer{err: tt.analysisErr}
			var requeued *queue.Job
			jq := &mockJobQueue{enqueueFunc: func(_ context.Context, job *queue.Job) error {
				if tt.enqueueErr != nil {
					return tt.enqueueErr
				}
				requeued = job
				return nil
			}}

			var opts []Option
			if tt.tasks != nil {
				opts = append(opts, WithTaskGetter(tt.tasks))
			}
			analyzer := NewPageAnalyzer(pre, jq, nil, opts...)

			job := tt.job()
			msg := &mockMessage{job: job}
			err := analyzer.ProcessJob(context.Background(), msg)

			if tt.expectError && err == nil {
				t.Error("Expected error but got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if msg.acked != tt.expectAck {
				t.Errorf("acked = %v, want %v", msg.acked, tt.expectAck)
			}
			if msg.nacked != tt.expectNack {
				t.Errorf("nacked = %v, want %v", msg.nacked, tt.expectNack)
			}
			if msg.nacked && msg.requeue != tt.expectRequeue {
				t.Errorf("requeue = %v, want %v", msg.requeue, tt.expectRequeue)
			}
			if got := pre.callCount(); got != tt.expectCalls {
				t.Errorf("Precompute calls = %d, want %d", got, tt.expectCalls)
			}
			if tt.expectRetry {
				if requeued == nil {
					t.Fatal("expected job to be re-enqueued")
				}
				if requeued.RetryCount != job.RetryCount+1 || requeued.NotBefore == nil {
					t.Errorf("unexpected retry job %+v", requeued)
				}
				if requeued.ID != job.ID {
					t.Errorf("retry should keep job ID")
				}
			} else if requeued != nil {
				t.Errorf("unexpected re-enqueue of %s", requeued.ID)
			}
		})
	}
}

func TestPageAnalyzer_RetryDelay(t *testing.T) {
	t.Parallel()

	a := NewPageAnalyzer(&mockPrecomputer{}, nil, nil, WithRetryDelay(time.Second))
	tests := []struct {
		retry int
		want  time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{3, 8 * time.Second},
		{20, 5 * time.Minute},
	}
	for _, tt := range tests {
		if got := a.retryDelay(tt.retry); got != tt.want {
			t.Errorf("retryDelay(%d) = %v, want %v", tt.retry, got, tt.want)
		}
	}
}

func TestPageAnalyzer_RunFillsCache(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	results := cache.NewMemory()
	svc := analysis.NewService(results)
	q := queue.NewMemoryQueue(4)
	defer func() { _ = q.Close() }()

	analyzer := NewPageAnalyzer(svc, q, zap.New(core))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- analyzer.Run(ctx, 1) }()

	page := pagetext.DemoPage()
	if err := q.Enqueue(ctx, queue.NewPageAnalysisJob("task-a", page)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for logs.FilterMessage("analyzed_page").Len() == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for analyzed_page")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run: %v", err)
	}

	if _, ok := results.GetSummary(context.Background(), page.URL); !ok {
		t.Error("summary should be cached after the job ran")
	}
	if _, ok := results.GetKeywords(context.Background(), page.URL); !ok {
		t.Error("keywords should be cached after the job ran")
	}
}

func TestPageAnalyzer_RunWithoutQueue(t *testing.T) {
	t.Parallel()

	if err := NewPageAnalyzer(&mockPrecomputer{}, nil, nil).Run(context.Background(), 1); err == nil {
		t.Error("expected error without a queue")
	}
}
