package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/benvon/focusdock/internal/models"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypePageAnalysis precomputes the summary and keywords of a saved page
	JobTypePageAnalysis JobType = "page_analysis"
)

// DefaultMaxRetries is how many times a failed job is requeued before it goes to the DLQ
const DefaultMaxRetries = 3

// Job represents a job in the queue
type Job struct {
	ID         uuid.UUID           `json:"id"`
	Type       JobType             `json:"type"`
	TaskID     string              `json:"task_id,omitempty"`
	Page       *models.PageContent `json:"page,omitempty"`
	NotBefore  *time.Time          `json:"not_before,omitempty"` // nil = immediate
	NotAfter   *time.Time          `json:"not_after,omitempty"`  // nil = no expiration
	CreatedAt  time.Time           `json:"created_at"`
	RetryCount int                 `json:"retry_count"`
	MaxRetries int                 `json:"max_retries"`
}

// NewPageAnalysisJob creates a job that analyzes page for the task taskID
func NewPageAnalysisJob(taskID string, page models.PageContent) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       JobTypePageAnalysis,
		TaskID:     taskID,
		Page:       &page,
		CreatedAt:  time.Now(),
		MaxRetries: DefaultMaxRetries,
	}
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()

	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}
	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}
	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}
	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
