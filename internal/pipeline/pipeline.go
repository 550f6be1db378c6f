// Package pipeline orchestrates the radar animation build: time series
// discovery, bounding box resolution, rate-limited frame fetching,
// compositing over the base map, and assembly into animated outputs.
// Every stage degrades instead of aborting; a run that hits partial
// failures still produces whatever imagery it could.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/skycastlabs/radarloop/internal/config"
	"github.com/skycastlabs/radarloop/internal/domain"
	"github.com/skycastlabs/radarloop/internal/observability"
	"github.com/skycastlabs/radarloop/internal/render"
	"github.com/skycastlabs/radarloop/internal/staging"
)

// AnimationAssembler turns staged frames into animated outputs.
type AnimationAssembler interface {
	Assemble(ctx context.Context, framePattern string, framePaths []string, outDir, prefix string) domain.AnimationOutput
}

// RunPublisher delivers run reports to an external sink.
type RunPublisher interface {
	PublishRunReport(ctx context.Context, report domain.RunReport) error
}

// Deps bundles the pipeline's collaborators. Geocoder and Publisher may be
// nil to disable those features.
type Deps struct {
	Discovery  *Discovery
	Fetcher    *FrameFetcher
	Compositor *render.Compositor
	Assembler  AnimationAssembler
	Staging    *staging.Manager
	Geocoder   domain.Geocoder
	Publisher  RunPublisher
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    *observability.Metrics
}

// Pipeline runs the discover-fetch-composite-assemble sequence for one
// configured region.
type Pipeline struct {
	cfg        *config.Config
	discovery  *Discovery
	fetcher    *FrameFetcher
	compositor *render.Compositor
	assembler  AnimationAssembler
	staging    *staging.Manager
	geocoder   domain.Geocoder
	publisher  RunPublisher
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics

	ready      atomic.Bool
	mu         sync.Mutex
	lastReport *domain.RunReport
}

// New creates a Pipeline.
func New(cfg *config.Config, deps Deps) *Pipeline {
	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.WMSTimeout}
	}
	return &Pipeline{
		cfg:        cfg,
		discovery:  deps.Discovery,
		fetcher:    deps.Fetcher,
		compositor: deps.Compositor,
		assembler:  deps.Assembler,
		staging:    deps.Staging,
		geocoder:   deps.Geocoder,
		publisher:  deps.Publisher,
		httpClient: httpClient,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
	}
}

// CheckReadiness returns nil once the pipeline has completed at least one
// run that produced imagery.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not produced imagery yet")
	}
	return nil
}

// LastReport returns the most recent run report, if any run has completed.
func (p *Pipeline) LastReport() (domain.RunReport, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastReport == nil {
		return domain.RunReport{}, false
	}
	return *p.lastReport, true
}

// Run executes one full pipeline pass and returns its report. Run never
// returns an error: every failure inside the pipeline is degraded and
// logged, and the report says what was produced.
func (p *Pipeline) Run(ctx context.Context) domain.RunReport {
	start := time.Now()
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	report := domain.RunReport{
		Region:    p.cfg.Region,
		Layer:     p.cfg.Layer,
		StartedAt: domain.Now().UTC(),
	}

	p.logger.Info("pipeline run starting", "region", report.Region, "layer", report.Layer)

	locs := domain.ResolveLocations(ctx, p.cfg.IncludeLocations, p.geocoder, p.logger)

	var best domain.AnimationOutput
	for _, s := range p.strategies(locs, &report) {
		out, ok := s.run(ctx)
		if !ok {
			p.logger.Info("animation source yielded nothing, trying next", "source", s.name)
			continue
		}
		if out.Animated() {
			best = out
			report.Source = s.name
			break
		}
		if report.Source == "" {
			best = out
			report.Source = s.name
		}
	}

	report.GIFPath = best.GIFPath
	report.VideoPath = best.VideoPath
	report.Success = best.Animated()
	report.StillPaths = p.renderLocationStills(ctx, locs)
	report.DurationSeconds = time.Since(start).Seconds()

	outcome := "failed"
	switch {
	case report.Success:
		outcome = "success"
	case len(best.FramePaths) > 0 || len(report.StillPaths) > 0:
		outcome = "degraded"
	}
	p.metrics.RunsTotal.WithLabelValues(outcome).Inc()
	p.metrics.RunDuration.Observe(report.DurationSeconds)
	p.metrics.LastRunUnix.Set(float64(domain.Now().Unix()))

	if outcome != "failed" {
		p.ready.Store(true)
	}
	p.setLastReport(report)
	p.publish(ctx, report)

	p.logger.Info("pipeline run finished",
		"region", report.Region,
		"outcome", outcome,
		"source", report.Source,
		"frames_fetched", report.FramesFetched,
		"frames_skipped", report.FramesSkipped,
		"gif", report.GIFPath,
		"video", report.VideoPath,
		"stills", len(report.StillPaths),
		"duration", time.Since(start).Round(time.Millisecond).String(),
	)
	return report
}

// buildFromFrames is the last-resort strategy: construct the animation from
// individually fetched per-timestamp frames.
func (p *Pipeline) buildFromFrames(ctx context.Context, locs []domain.Location, report *domain.RunReport) (domain.AnimationOutput, bool) {
	run, err := p.staging.Acquire(p.cfg.Region)
	if err != nil {
		if errors.Is(err, staging.ErrRegionBusy) {
			p.logger.Warn("another build holds the region lock, skipping frame build", "region", p.cfg.Region)
		} else {
			p.logger.Warn("staging unavailable, skipping frame build", "error", err)
		}
		return domain.AnimationOutput{}, false
	}

	bbox := p.resolveBBox(locs)
	step := time.Duration(p.cfg.FrameStepMinutes) * time.Minute
	times := p.discovery.Series(ctx, p.cfg.Layer, p.cfg.FrameCount, step)
	report.FramesRequested = len(times)

	requests := make([]domain.FrameRequest, len(times))
	for i, t := range times {
		requests[i] = domain.FrameRequest{
			Layer:       p.cfg.Layer,
			BBox:        bbox,
			Width:       p.cfg.FrameWidth,
			Height:      p.cfg.FrameHeight,
			Time:        t,
			Format:      p.cfg.FrameFormat,
			Transparent: p.cfg.BaseMapPath != "",
		}
	}
	results := p.fetcher.Fetch(ctx, requests)
	for _, r := range results {
		if !r.Empty() {
			report.FramesFetched++
		}
	}

	var base image.Image
	if p.cfg.BaseMapPath != "" {
		base, err = render.LoadBaseMap(p.cfg.BaseMapPath)
		if err != nil {
			p.logger.Warn("base map unavailable, staging raw radar frames", "error", err)
			base = nil
		}
	}

	framePaths := p.stageFrames(run, results, base)
	report.FramesSkipped = report.FramesRequested - len(framePaths)

	out := p.assembler.Assemble(ctx, run.FramePattern(), framePaths, p.cfg.OutputDir, "radar_"+p.cfg.Region)

	// The raw-frame staging directory is removed only after a successful
	// encode; on a soft failure the frames stay behind for manual use.
	run.Release(out.Success)
	if out.Success {
		out.FramePaths = nil
	}

	return out, out.Success || len(out.FramePaths) > 0
}

// resolveBBox unions the configured default rectangle with the padded
// bounding rectangle of the resolved must-include locations.
func (p *Pipeline) resolveBBox(locs []domain.Location) domain.BoundingBox {
	box := p.cfg.DefaultBBox
	if locBox, ok := domain.BoxAround(locs, p.cfg.PaddingDegrees); ok {
		box = box.Union(locBox)
	}
	return box
}

// stageFrames composites each fetched frame over the base map (or stages
// the raw bytes when no base map is configured) and writes them under
// contiguous fixed-width indexes so the encoder's input pattern matches.
func (p *Pipeline) stageFrames(run *staging.Run, results []domain.FrameResult, base image.Image) []string {
	var paths []string
	for _, r := range results {
		if r.Empty() {
			continue
		}
		idx := len(paths)
		path := run.FramePath(idx)

		if base == nil {
			if err := os.WriteFile(path, r.Bytes, 0o644); err != nil {
				p.logger.Warn("stage raw frame", "index", idx, "error", err)
				continue
			}
			paths = append(paths, path)
			continue
		}

		frame, err := p.compositor.Composite(base, r.Bytes, idx, r.Request.Time)
		if err != nil {
			p.logger.Warn("composite failed, skipping frame",
				"index", idx,
				"time", domain.FormatInstant(r.Request.Time),
				"error", err,
			)
			continue
		}
		if err := render.WritePNG(path, frame.Raster); err != nil {
			p.logger.Warn("write composited frame", "index", idx, "error", err)
			continue
		}
		paths = append(paths, path)
	}
	return paths
}

// renderLocationStills fetches one "latest" close-up frame per resolved
// location, framed by the center/zoom projection. Stills are standalone
// outputs and are retained across runs (each overwrites its predecessor).
func (p *Pipeline) renderLocationStills(ctx context.Context, locs []domain.Location) []string {
	if len(locs) == 0 {
		return nil
	}

	requests := make([]domain.FrameRequest, len(locs))
	for i, loc := range locs {
		requests[i] = domain.FrameRequest{
			Layer:  p.cfg.Layer,
			BBox:   domain.CenterZoomBox(loc.Lat, loc.Lon, p.cfg.LocationZoom, p.cfg.FrameWidth, p.cfg.FrameHeight),
			Width:  p.cfg.FrameWidth,
			Height: p.cfg.FrameHeight,
			Format: p.cfg.FrameFormat,
		}
	}
	results := p.fetcher.Fetch(ctx, requests)

	var paths []string
	for i, r := range results {
		if r.Empty() {
			continue
		}
		path := filepath.Join(p.cfg.OutputDir, fmt.Sprintf("radar_%s_%s.png", p.cfg.Region, slugify(locs[i].Name)))
		if err := p.writeOutput(path, r.Bytes); err != nil {
			p.logger.Warn("write location still", "location", locs[i].Name, "error", err)
			continue
		}
		paths = append(paths, path)
	}
	return paths
}

func (p *Pipeline) setLastReport(report domain.RunReport) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastReport = &report
}

func (p *Pipeline) publish(ctx context.Context, report domain.RunReport) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.PublishRunReport(ctx, report); err != nil {
		p.logger.Warn("publish run report", "error", err)
	}
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, slug)
	return strings.Trim(slug, "_")
}
