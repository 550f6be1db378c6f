// Package config loads service settings from environment variables,
// applying defaults and validating the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/skycastlabs/radarloop/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// WMS radar source.
	WMSBaseURL       string
	Layer            string
	FrameCount       int
	FrameStepMinutes int
	FrameWidth       int
	FrameHeight      int
	FrameFormat      string
	RequestDelay     time.Duration
	WMSTimeout       time.Duration

	// Region framing.
	Region           string
	DefaultBBox      domain.BoundingBox
	PaddingDegrees   float64
	IncludeLocations []domain.Location
	LocationZoom     int

	// Alternate animation sources, tried before the frame-by-frame build.
	AnimationURL   string
	StaticRadarURL string

	// Compositing and output.
	BaseMapPath    string
	OverlayOpacity float64
	OutputDir      string
	StagingDir     string
	StagingMaxAge  time.Duration
	FrameRate      int
	FFmpegBin      string
	EncodeTimeout  time.Duration

	// Service plumbing.
	RenderInterval  time.Duration
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Mapbox geocoding (resolves include-locations given without coordinates).
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Optional run-report sink.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	defaultBBox, err := parseBBox(envOrDefault("DEFAULT_BBOX", "40.5,-79.8,62.6,-57.1"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_BBOX: %w", err)
	}

	locations, err := parseLocations(os.Getenv("INCLUDE_LOCATIONS"))
	if err != nil {
		return nil, fmt.Errorf("invalid INCLUDE_LOCATIONS: %w", err)
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		WMSBaseURL:       os.Getenv("WMS_BASE_URL"),
		Layer:            os.Getenv("WMS_LAYER"),
		FrameCount:       envInt("FRAME_COUNT", 12),
		FrameStepMinutes: envInt("FRAME_STEP_MINUTES", 10),
		FrameWidth:       envInt("FRAME_WIDTH", 1920),
		FrameHeight:      envInt("FRAME_HEIGHT", 1080),
		FrameFormat:      envOrDefault("FRAME_FORMAT", "image/png"),
		RequestDelay:     envDuration("REQUEST_DELAY", 200*time.Millisecond),
		WMSTimeout:       envDuration("WMS_TIMEOUT", 15*time.Second),

		Region:           envOrDefault("REGION_NAME", "default"),
		DefaultBBox:      defaultBBox,
		PaddingDegrees:   envFloat("PADDING_DEGREES", 0.75),
		IncludeLocations: locations,
		LocationZoom:     envInt("LOCATION_ZOOM", 8),

		AnimationURL:   os.Getenv("ANIMATION_URL"),
		StaticRadarURL: os.Getenv("STATIC_RADAR_URL"),

		BaseMapPath:    os.Getenv("BASE_MAP_PATH"),
		OverlayOpacity: envFloat("OVERLAY_OPACITY", 0.70),
		OutputDir:      envOrDefault("OUTPUT_DIR", "./out"),
		StagingDir:     envOrDefault("STAGING_DIR", "./staging"),
		StagingMaxAge:  envDuration("STAGING_MAX_AGE", 6*time.Hour),
		FrameRate:      envInt("FRAME_RATE", 2),
		FFmpegBin:      envOrDefault("FFMPEG_BIN", "ffmpeg"),
		EncodeTimeout:  envDuration("ENCODE_TIMEOUT", 2*time.Minute),

		RenderInterval:  envDuration("RENDER_INTERVAL", 10*time.Minute),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   envDuration("MAPBOX_TIMEOUT", 5*time.Second),
		MapboxCacheSize: envInt("MAPBOX_CACHE_SIZE", 1000),

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   splitNonEmpty(envOrDefault("KAFKA_BROKERS", "localhost:9092"), ","),
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "radar-run-reports"),
	}

	if cfg.WMSBaseURL == "" {
		return nil, errors.New("WMS_BASE_URL is required")
	}
	if cfg.Layer == "" {
		return nil, errors.New("WMS_LAYER is required")
	}
	if cfg.FrameCount <= 0 {
		return nil, errors.New("FRAME_COUNT must be positive")
	}
	if cfg.FrameStepMinutes <= 0 {
		return nil, errors.New("FRAME_STEP_MINUTES must be positive")
	}
	if cfg.FrameWidth <= 0 || cfg.FrameHeight <= 0 {
		return nil, errors.New("FRAME_WIDTH and FRAME_HEIGHT must be positive")
	}
	if cfg.OverlayOpacity <= 0 || cfg.OverlayOpacity > 1 {
		return nil, errors.New("OVERLAY_OPACITY must be in (0, 1]")
	}
	if cfg.PaddingDegrees <= 0 {
		return nil, errors.New("PADDING_DEGREES must be positive")
	}
	if !cfg.DefaultBBox.Valid() {
		return nil, errors.New("DEFAULT_BBOX must satisfy minLat<maxLat and minLon<maxLon")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}

	return cfg, nil
}

// parseBBox parses "minLat,minLon,maxLat,maxLon".
func parseBBox(s string) (domain.BoundingBox, error) {
	parts := splitNonEmpty(s, ",")
	if len(parts) != 4 {
		return domain.BoundingBox{}, fmt.Errorf("want 4 comma-separated values, got %d", len(parts))
	}
	vals := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return domain.BoundingBox{}, fmt.Errorf("value %q: %w", part, err)
		}
		vals[i] = v
	}
	return domain.BoundingBox{MinLat: vals[0], MinLon: vals[1], MaxLat: vals[2], MaxLon: vals[3]}, nil
}

// parseLocations parses a semicolon-separated list of "Name@lat,lon"
// entries. The "@lat,lon" part is optional; a bare name is resolved through
// the geocoder at run time (and skipped when geocoding is disabled).
func parseLocations(s string) ([]domain.Location, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var locs []domain.Location
	for _, item := range splitNonEmpty(s, ";") {
		name, coords, found := strings.Cut(item, "@")
		loc := domain.Location{Name: strings.TrimSpace(name)}
		if loc.Name == "" {
			return nil, fmt.Errorf("entry %q has no name", item)
		}
		if found {
			latStr, lonStr, ok := strings.Cut(coords, ",")
			if !ok {
				return nil, fmt.Errorf("entry %q: coordinates must be lat,lon", item)
			}
			lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
			if err != nil {
				return nil, fmt.Errorf("entry %q: bad latitude: %w", item, err)
			}
			lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
			if err != nil {
				return nil, fmt.Errorf("entry %q: bad longitude: %w", item, err)
			}
			loc.Lat, loc.Lon = lat, lon
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if s := os.Getenv(key); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
