package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/skycastlabs/radarloop/internal/domain"
	"github.com/skycastlabs/radarloop/internal/observability"
)

// CapabilitiesSource fetches a layer's capabilities document.
type CapabilitiesSource interface {
	GetCapabilities(ctx context.Context, layer string) ([]byte, error)
}

// DimensionParser extracts a time dimension from a capabilities document.
// The WMS-specific XML handling stays behind this seam so orchestration
// never touches XML.
type DimensionParser func(doc []byte) (domain.TimeDimension, bool)

// Discovery resolves the set of timestamps radar frames should be fetched
// for. It never fails: any problem with the capabilities request or the
// document itself degrades to a locally synthesized series.
type Discovery struct {
	client  CapabilitiesSource
	parse   DimensionParser
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewDiscovery creates a Discovery using the given capabilities source and
// dimension parser.
func NewDiscovery(client CapabilitiesSource, parse DimensionParser, metrics *observability.Metrics, logger *slog.Logger) *Discovery {
	return &Discovery{
		client:  client,
		parse:   parse,
		logger:  logger,
		metrics: metrics,
	}
}

// Series returns up to n observation instants for the layer, oldest first.
// The result is always non-empty for n > 0: when the service advertises a
// usable time dimension it is walked backward from its end; otherwise n
// instants spaced step apart ending at the current UTC time are synthesized.
func (d *Discovery) Series(ctx context.Context, layer string, n int, step time.Duration) []time.Time {
	doc, err := d.client.GetCapabilities(ctx, layer)
	if err != nil {
		d.logger.Warn("capabilities request failed, synthesizing time series",
			"layer", layer,
			"error", err,
		)
		return d.fallback(n, step)
	}

	dim, ok := d.parse(doc)
	if !ok {
		d.logger.Warn("no usable time dimension in capabilities, synthesizing time series",
			"layer", layer,
		)
		return d.fallback(n, step)
	}

	times := dim.Series(n)
	if len(times) == 0 {
		return d.fallback(n, step)
	}

	d.metrics.DiscoveryTotal.WithLabelValues("capabilities").Inc()
	d.logger.Debug("resolved time series from capabilities",
		"layer", layer,
		"count", len(times),
		"oldest", domain.FormatInstant(times[0]),
		"newest", domain.FormatInstant(times[len(times)-1]),
	)
	return times
}

func (d *Discovery) fallback(n int, step time.Duration) []time.Time {
	d.metrics.DiscoveryTotal.WithLabelValues("fallback").Inc()
	return domain.SynthesizeSeries(n, step)
}
