package model

import "time"

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether a job in this status will never change again.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

type JobType string

const (
	JobTypeStageA     JobType = "stage_a"
	JobTypeStageB     JobType = "stage_b"
	JobTypeFinalStage JobType = "final_stage"
)

// KnownJobType validates a wire-level job type string.
func KnownJobType(s string) bool {
	switch JobType(s) {
	case JobTypeStageA, JobTypeStageB, JobTypeFinalStage:
		return true
	}
	return false
}

// Message is one turn of the conversation handed to the completion upstream.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// JobInput is the caller-supplied payload. It is stored verbatim and never
// mutated by the worker.
type JobInput struct {
	Messages []Message         `json:"messages"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Job is one unit of asynchronous completion work.
//
// ID is assigned by the store (BIGSERIAL) and doubles as the FIFO ordering
// key together with CreatedAt. Result and Error are mutually exclusive;
// CompletedAt is set exactly once, on the first transition into a terminal
// status.
type Job struct {
	ID          int64
	Type        JobType
	Status      JobStatus
	Input       JobInput
	Result      string
	Error       string
	Email       string
	CreatedAt   time.Time
	CompletedAt *time.Time
}
