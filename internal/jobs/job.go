// Package jobs persists and executes asynchronous variable
// calculations. Requests are enqueued as rows, claimed by an in-process
// worker pool, and polled by clients through their task id.
package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusQueued   Status = "queued"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Kind distinguishes the two calculator families.
type Kind string

const (
	KindBorder Kind = "border"
	KindPoint  Kind = "point"
)

// ErrNotFound is returned by Get for unknown task ids.
var ErrNotFound = eris.New("job not found")

// Params are the request parameters captured at enqueue time. Fields
// irrelevant to the variable stay at their zero value.
type Params struct {
	BorderType    string `json:"border_type,omitempty"`
	Year          int    `json:"year,omitempty"`
	BufferSize    int    `json:"buffer_size,omitempty"`
	EmissionType  string `json:"emission_type,omitempty"`
	PollutantType string `json:"pollutant_type,omitempty"`
}

// ErrorMeta mirrors the failure payload exposed on the status endpoint.
type ErrorMeta struct {
	ExcType    string `json:"exc_type"`
	ExcMessage string `json:"exc_message"`
}

// Job is one queued calculation.
type Job struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	Variable  string          `json:"variable"`
	Params    Params          `json:"params"`
	Status    Status          `json:"status"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     *ErrorMeta      `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Filter specifies criteria for listing jobs.
type Filter struct {
	Status   Status `json:"status,omitempty"`
	Variable string `json:"variable,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for the job queue.
type Store interface {
	// Enqueue inserts a queued job and returns it with its generated id.
	Enqueue(ctx context.Context, kind Kind, variable string, params Params) (*Job, error)

	// ClaimNext atomically moves the oldest queued job to running and
	// returns it. A nil job means the queue is empty.
	ClaimNext(ctx context.Context) (*Job, error)

	// Complete stores the result rows and marks the job complete.
	Complete(ctx context.Context, jobID string, result json.RawMessage) error

	// Fail records the failure meta and marks the job failed.
	Fail(ctx context.Context, jobID string, meta ErrorMeta) error

	// Get fetches one job by id, ErrNotFound if absent.
	Get(ctx context.Context, jobID string) (*Job, error)

	// List returns jobs matching the filter, newest first.
	List(ctx context.Context, filter Filter) ([]Job, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
