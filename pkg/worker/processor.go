package worker

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/messaging"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

type JobProcessorConfig struct {
	BlockTimeout    time.Duration
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// JobProcessor drains a reliable queue one job at a time. Failed jobs are
// retried with exponential backoff and dead-lettered once retries run out.
type JobProcessor struct {
	consumer messaging.Consumer
	handler  messaging.Handler
	config   JobProcessorConfig
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewJobProcessor(
	consumer messaging.Consumer,
	handler messaging.Handler,
	config JobProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *JobProcessor {
	// Config validation instead of defaults
	if config.BlockTimeout <= 0 {
		panic("BlockTimeout must be greater than 0")
	}
	if config.MaxRetries < 0 {
		panic("MaxRetries must not be negative")
	}
	if config.InitialInterval <= 0 {
		panic("InitialInterval must be greater than 0")
	}
	if config.MaxInterval < config.InitialInterval {
		panic("MaxInterval must not be less than InitialInterval")
	}

	return &JobProcessor{
		consumer: consumer,
		handler:  handler,
		config:   config,
		logger:   logger,
		metrics:  metrics,
	}
}

// Start requeues jobs left in flight by a previous run and then consumes
// until ctx is cancelled.
func (p *JobProcessor) Start(ctx context.Context) {
	p.logger.Info("Starting job processor")

	if moved, err := p.consumer.Recover(ctx); err != nil {
		p.logger.Error(err, "Failed to recover in-flight jobs")
	} else if moved > 0 {
		p.logger.Info("Recovered in-flight jobs", "count", moved)
	}

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down job processor")
			return
		default:
		}

		job, err := p.consumer.Dequeue(ctx, p.config.BlockTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Error(err, "Failed to dequeue job")
			p.pause(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.Process(ctx, job)
	}
}

func (p *JobProcessor) pause(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(p.config.InitialInterval):
	}
}

// Process runs one job to completion: ack on success, dead letter after the
// last retry. A job interrupted by shutdown is left in flight for Recover.
func (p *JobProcessor) Process(ctx context.Context, job *messaging.Job) {
	timer := prometheus.NewTimer(p.metrics.JobProcessingTime.WithLabelValues(job.Key))
	defer timer.ObserveDuration()

	err := backoff.RetryNotify(
		func() error {
			err := p.handler.Handle(ctx, job)
			if errors.Is(err, messaging.ErrNoHandler) {
				return backoff.Permanent(err)
			}
			return err
		},
		backoff.WithContext(backoff.WithMaxRetries(p.newBackOff(), uint64(p.config.MaxRetries)), ctx),
		func(err error, next time.Duration) {
			p.metrics.JobRetries.WithLabelValues(job.Key).Inc()
			p.logger.Warn("Job attempt failed, retrying",
				"job_id", job.ID,
				"key", job.Key,
				"error", err.Error(),
				"next_attempt_in", next.String())
		},
	)

	if err == nil {
		if ackErr := p.consumer.Ack(ctx, job); ackErr != nil {
			p.logger.Error(ackErr, "Failed to ack job", "job_id", job.ID)
		}
		p.metrics.JobsProcessed.WithLabelValues(job.Key).Inc()
		p.logger.Debug("Job processed", "job_id", job.ID, "key", job.Key)
		return
	}

	if ctx.Err() != nil {
		p.logger.Info("Job interrupted by shutdown", "job_id", job.ID)
		return
	}

	p.metrics.JobsFailed.WithLabelValues(job.Key).Inc()
	p.logger.Error(err, "Job failed, moving to dead letter list", "job_id", job.ID, "key", job.Key)

	if dlErr := p.consumer.DeadLetter(ctx, job, err); dlErr != nil {
		p.logger.Error(dlErr, "Failed to dead-letter job", "job_id", job.ID)
		return
	}
	p.metrics.JobsDeadLettered.WithLabelValues(job.Key).Inc()
}

func (p *JobProcessor) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.config.InitialInterval
	b.MaxInterval = p.config.MaxInterval
	b.MaxElapsedTime = 0
	return b
}
