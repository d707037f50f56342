// Package messaging defines the background job contract shared by the API,
// which enqueues, and the worker, which consumes.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Job is the envelope stored on the queue.
type Job struct {
	ID         string          `json:"id"`
	Key        string          `json:"key"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	LastError  string          `json:"last_error,omitempty"`
	FailedAt   *time.Time      `json:"failed_at,omitempty"`

	// Raw is the exact encoded form read from the queue; acknowledging a
	// job removes this value from the processing list.
	Raw string `json:"-"`
}

// NewJob marshals payload into a fresh job.
func NewJob(key string, payload interface{}, now time.Time) (*Job, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job payload: %w", err)
	}
	return &Job{
		ID:         uuid.NewString(),
		Key:        key,
		Payload:    data,
		EnqueuedAt: now.UTC(),
	}, nil
}

// Decode unmarshals the payload into v.
func (j *Job) Decode(v interface{}) error {
	if err := json.Unmarshal(j.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", j.Key, err)
	}
	return nil
}

// Queue accepts jobs for asynchronous processing with at-least-once delivery.
type Queue interface {
	Enqueue(ctx context.Context, key string, payload interface{}) error
}

// Consumer is the worker side of a reliable queue. A dequeued job stays in a
// processing list until it is acknowledged or dead-lettered.
type Consumer interface {
	// Dequeue blocks up to timeout and returns nil, nil when nothing arrived.
	Dequeue(ctx context.Context, timeout time.Duration) (*Job, error)
	Ack(ctx context.Context, job *Job) error
	DeadLetter(ctx context.Context, job *Job, reason error) error
	// Recover moves jobs orphaned in the processing list back to the queue.
	Recover(ctx context.Context) (int, error)
	Len(ctx context.Context) (int64, error)
}
