package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/messaging"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

// DepthReporter samples the queue length into the queue depth gauge.
type DepthReporter struct {
	consumer messaging.Consumer
	metrics  *metrics.Metrics
	logger   *logger.Logger
	interval time.Duration
}

func NewDepthReporter(consumer messaging.Consumer, metrics *metrics.Metrics, logger *logger.Logger, interval time.Duration) *DepthReporter {
	return &DepthReporter{
		consumer: consumer,
		metrics:  metrics,
		logger:   logger,
		interval: interval,
	}
}

func (r *DepthReporter) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sample(ctx)
		}
	}
}

func (r *DepthReporter) sample(ctx context.Context) {
	n, err := r.consumer.Len(ctx)
	if err != nil {
		r.logger.Error(err, "Failed to sample queue depth")
		return
	}
	r.metrics.QueueDepth.Set(float64(n))
}
