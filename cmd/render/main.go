// Command render runs a single radar animation build and prints the run
// report as JSON. It is intended for cron jobs and for checking a WMS
// configuration by hand before deploying the daemon.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/skycastlabs/radarloop/internal/adapter/mapbox"
	"github.com/skycastlabs/radarloop/internal/adapter/wms"
	"github.com/skycastlabs/radarloop/internal/config"
	"github.com/skycastlabs/radarloop/internal/domain"
	"github.com/skycastlabs/radarloop/internal/encoder"
	"github.com/skycastlabs/radarloop/internal/observability"
	"github.com/skycastlabs/radarloop/internal/pipeline"
	"github.com/skycastlabs/radarloop/internal/procs"
	"github.com/skycastlabs/radarloop/internal/render"
	"github.com/skycastlabs/radarloop/internal/staging"
)

func main() {
	quiet := flag.Bool("quiet", false, "suppress progress logs; print only the run report")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if *quiet {
		logger = slog.New(slog.DiscardHandler)
	}
	metrics := observability.NewMetrics()
	registry := procs.NewRegistry(logger)

	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize)
	}

	stagingMgr := staging.NewManager(cfg.StagingDir, logger)
	stagingMgr.CleanStale(cfg.StagingMaxAge)

	wmsClient := wms.NewClient(cfg.WMSBaseURL, cfg.WMSTimeout, logger)
	ffmpeg := encoder.New(cfg.FFmpegBin, cfg.EncodeTimeout, registry)

	p := pipeline.New(cfg, pipeline.Deps{
		Discovery:  pipeline.NewDiscovery(wmsClient, wms.ParseTimeDimension, metrics, logger),
		Fetcher:    pipeline.NewFrameFetcher(wmsClient, cfg.RequestDelay, metrics, logger),
		Compositor: render.NewCompositor(cfg.OverlayOpacity),
		Assembler:  encoder.NewAssembler(ffmpeg, cfg.FrameRate, cfg.FrameWidth, cfg.FrameHeight, metrics, logger),
		Staging:    stagingMgr,
		Geocoder:   geocoder,
		Logger:     logger,
		Metrics:    metrics,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report := p.Run(ctx)
	registry.CancelAll()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Fprintf(os.Stderr, "encode report: %v\n", err)
		os.Exit(1)
	}
	if !report.Success {
		os.Exit(2)
	}
}
