// Command radarloop is the unattended radar animation daemon: it
// periodically discovers radar observation times from a WMS, fetches and
// composites frames over a base map, and assembles looping GIF/MP4 outputs
// for broadcast-style playback.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/skycastlabs/radarloop/internal/adapter/http"
	kafkaadapter "github.com/skycastlabs/radarloop/internal/adapter/kafka"
	"github.com/skycastlabs/radarloop/internal/adapter/mapbox"
	"github.com/skycastlabs/radarloop/internal/adapter/wms"
	"github.com/skycastlabs/radarloop/internal/config"
	"github.com/skycastlabs/radarloop/internal/domain"
	"github.com/skycastlabs/radarloop/internal/encoder"
	"github.com/skycastlabs/radarloop/internal/observability"
	"github.com/skycastlabs/radarloop/internal/pipeline"
	"github.com/skycastlabs/radarloop/internal/procs"
	"github.com/skycastlabs/radarloop/internal/render"
	"github.com/skycastlabs/radarloop/internal/scheduler"
	"github.com/skycastlabs/radarloop/internal/staging"
)

func main() {
	_ = godotenv.Load() // a missing .env is fine; the environment wins anyway

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	registry := procs.NewRegistry(logger)

	// Geocoding is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	// Run reporting is feature-flagged via KAFKA_ENABLED.
	var publisher pipeline.RunPublisher
	var publisherCloser *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisherCloser = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaSinkTopic, logger)
		publisher = publisherCloser
		logger.Info("kafka run reporting enabled", "topic", cfg.KafkaSinkTopic)
	}

	stagingMgr := staging.NewManager(cfg.StagingDir, logger)
	if removed := stagingMgr.CleanStale(cfg.StagingMaxAge); len(removed) > 0 {
		logger.Info("reclaimed stale staging directories", "count", len(removed))
	}

	wmsClient := wms.NewClient(cfg.WMSBaseURL, cfg.WMSTimeout, logger)
	ffmpeg := encoder.New(cfg.FFmpegBin, cfg.EncodeTimeout, registry)

	p := pipeline.New(cfg, pipeline.Deps{
		Discovery:  pipeline.NewDiscovery(wmsClient, wms.ParseTimeDimension, metrics, logger),
		Fetcher:    pipeline.NewFrameFetcher(wmsClient, cfg.RequestDelay, metrics, logger),
		Compositor: render.NewCompositor(cfg.OverlayOpacity),
		Assembler:  encoder.NewAssembler(ffmpeg, cfg.FrameRate, cfg.FrameWidth, cfg.FrameHeight, metrics, logger),
		Staging:    stagingMgr,
		Geocoder:   geocoder,
		Publisher:  publisher,
		Logger:     logger,
		Metrics:    metrics,
	})

	sched := scheduler.New(p, cfg.RenderInterval, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	if err := sched.Start(ctx); err != nil {
		logger.Error("scheduler start failed", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	sched.Stop()
	// In-flight encoder processes are killed hard; everything else is
	// cooperative via the cancelled run context.
	registry.CancelAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisherCloser != nil {
		if err := publisherCloser.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
