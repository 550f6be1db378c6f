package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/skycastlabs/radarloop/internal/domain"
	"github.com/skycastlabs/radarloop/internal/observability"
)

// MapSource fetches one rendered raster per frame request.
type MapSource interface {
	GetMap(ctx context.Context, req domain.FrameRequest) ([]byte, error)
}

// FrameFetcher retrieves radar rasters one at a time, separated by a
// politeness delay. Requests are deliberately sequential: the upstream
// radar WMS is a shared public service.
type FrameFetcher struct {
	client  MapSource
	delay   time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewFrameFetcher creates a fetcher with the given inter-request delay.
func NewFrameFetcher(client MapSource, delay time.Duration, metrics *observability.Metrics, logger *slog.Logger) *FrameFetcher {
	return &FrameFetcher{
		client:  client,
		delay:   delay,
		logger:  logger,
		metrics: metrics,
	}
}

// Fetch performs one GetMap per request and returns a same-length, ordered
// result list. A failed request yields an empty result at its index; the
// loop continues. Cancellation is cooperative: it is checked between
// requests, and once the context is done the remaining indexes are filled
// with empty results without touching the network.
func (f *FrameFetcher) Fetch(ctx context.Context, requests []domain.FrameRequest) []domain.FrameResult {
	results := make([]domain.FrameResult, len(requests))

	for i, req := range requests {
		results[i] = domain.FrameResult{Request: req}

		if i > 0 && !sleepWithContext(ctx, f.delay) {
			results[i].Err = ctx.Err()
			continue
		}
		if ctx.Err() != nil {
			results[i].Err = ctx.Err()
			continue
		}

		start := time.Now()
		data, err := f.client.GetMap(ctx, req)
		f.metrics.FetchDuration.Observe(time.Since(start).Seconds())

		if err != nil {
			f.metrics.FramesFailed.Inc()
			f.logger.Warn("frame fetch failed, skipping",
				"index", i,
				"time", domain.FormatInstant(req.Time),
				"error", err,
			)
			results[i].Err = err
			continue
		}

		f.metrics.FramesFetched.Inc()
		results[i].Bytes = data
	}

	return results
}

// sleepWithContext sleeps for d unless the context finishes first.
// Returns false when interrupted.
func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
