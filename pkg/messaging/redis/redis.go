package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/jwalitptl/booking-api/pkg/messaging"
)

type Config struct {
	URL          string
	PoolSize     int
	MinIdleConns int
}

// NewClient parses the URL, applies pool settings and checks connectivity.
func NewClient(ctx context.Context, config Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Configure connection pooling
	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	if config.MinIdleConns > 0 {
		opts.MinIdleConns = config.MinIdleConns
	}

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// Queue is a reliable list-based queue. Producers LPUSH onto name; consumers
// BRPOPLPUSH into name:processing and LREM on acknowledgement.
type Queue struct {
	client     *redis.Client
	name       string
	processing string
	dead       string
	cb         *gobreaker.CircuitBreaker
	logger     *zerolog.Logger
	now        func() time.Time
}

func NewQueue(client *redis.Client, name string, logger *zerolog.Logger) *Queue {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	q := &Queue{
		client:     client,
		name:       name,
		processing: name + ":processing",
		dead:       name + ":dead",
		logger:     logger,
		now:        time.Now,
	}

	q.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-queue",
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			q.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})

	return q
}

// Names returns the main, processing and dead letter list keys.
func (q *Queue) Names() (string, string, string) {
	return q.name, q.processing, q.dead
}

func (q *Queue) Enqueue(ctx context.Context, key string, payload interface{}) error {
	job, err := messaging.NewJob(key, payload, q.now())
	if err != nil {
		return err
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	_, err = q.cb.Execute(func() (interface{}, error) {
		return nil, q.client.LPush(ctx, q.name, data).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue %s job: %w", key, err)
	}

	q.logger.Debug().Str("job_id", job.ID).Str("key", key).Msg("Job enqueued")
	return nil
}

func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*messaging.Job, error) {
	raw, err := q.client.BRPopLPush(ctx, q.name, q.processing, timeout).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue job: %w", err)
	}

	var job messaging.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		// Unreadable entries would otherwise be recovered forever.
		if moveErr := q.moveToDead(ctx, raw, raw); moveErr != nil {
			return nil, fmt.Errorf("failed to dead-letter malformed job: %w", moveErr)
		}
		return nil, fmt.Errorf("malformed job dead-lettered: %w", err)
	}
	job.Raw = raw
	return &job, nil
}

func (q *Queue) Ack(ctx context.Context, job *messaging.Job) error {
	if err := q.client.LRem(ctx, q.processing, 1, job.Raw).Err(); err != nil {
		return fmt.Errorf("failed to ack job %s: %w", job.ID, err)
	}
	return nil
}

func (q *Queue) DeadLetter(ctx context.Context, job *messaging.Job, reason error) error {
	failedAt := q.now().UTC()
	dead := *job
	dead.FailedAt = &failedAt
	if reason != nil {
		dead.LastError = reason.Error()
	}

	data, err := json.Marshal(dead)
	if err != nil {
		return fmt.Errorf("failed to marshal dead job: %w", err)
	}

	if err := q.moveToDead(ctx, job.Raw, string(data)); err != nil {
		return fmt.Errorf("failed to dead-letter job %s: %w", job.ID, err)
	}
	return nil
}

func (q *Queue) moveToDead(ctx context.Context, raw, entry string) error {
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, q.processing, 1, raw)
		pipe.LPush(ctx, q.dead, entry)
		return nil
	})
	return err
}

func (q *Queue) Recover(ctx context.Context) (int, error) {
	moved := 0
	for {
		err := q.client.RPopLPush(ctx, q.processing, q.name).Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, fmt.Errorf("failed to recover processing jobs: %w", err)
		}
		moved++
	}
}

func (q *Queue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.name).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read queue length: %w", err)
	}
	return n, nil
}

// Ping reports whether Redis is reachable; used by readiness checks.
func (q *Queue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

var (
	_ messaging.Queue    = (*Queue)(nil)
	_ messaging.Consumer = (*Queue)(nil)
)
