package messaging

import (
	"context"
	"fmt"
	"sync"
)

// Handler processes one job. Returning an error makes the worker retry.
type Handler interface {
	Handle(ctx context.Context, job *Job) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, job *Job) error

func (f HandlerFunc) Handle(ctx context.Context, job *Job) error {
	return f(ctx, job)
}

// ErrNoHandler is wrapped when a job key has no registered handler.
var ErrNoHandler = fmt.Errorf("no handler registered")

// Mux routes jobs to handlers by key.
type Mux struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewMux() *Mux {
	return &Mux{handlers: make(map[string]Handler)}
}

// Register binds key to h, replacing any previous handler.
func (m *Mux) Register(key string, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[key] = h
}

func (m *Mux) Handle(ctx context.Context, job *Job) error {
	m.mu.RLock()
	h, ok := m.handlers[job.Key]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job %s with key %q: %w", job.ID, job.Key, ErrNoHandler)
	}
	return h.Handle(ctx, job)
}
