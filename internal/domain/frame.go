package domain

import (
	"image"
	"time"
)

// FrameRequest fully determines one WMS GetMap URL. Stateless.
type FrameRequest struct {
	Layer       string
	BBox        BoundingBox
	Width       int
	Height      int
	Time        time.Time // zero means "latest"; omitted from the URL
	Format      string    // MIME type, e.g. "image/png"
	Transparent bool
}

// FrameResult pairs a request with the bytes it produced. A failed fetch is
// an empty result carrying the error, never an aborted pipeline.
type FrameResult struct {
	Request FrameRequest
	Bytes   []byte
	Err     error
}

// Empty reports whether the fetch produced no usable raster.
func (r FrameResult) Empty() bool {
	return len(r.Bytes) == 0
}

// CompositedFrame is one radar tile drawn over the base map, ready to be
// written to the staging directory.
type CompositedFrame struct {
	Index      int
	Raster     image.Image
	SourceTime time.Time
}

// AnimationOutput describes what a pipeline run materialized on disk.
// Success is true when at least one animated artifact was produced;
// a run that only leaves raw frames behind is degraded, not failed.
type AnimationOutput struct {
	FramePaths []string
	GIFPath    string
	VideoPath  string
	Success    bool
}

// Animated reports whether the output includes a multi-frame artifact.
func (o AnimationOutput) Animated() bool {
	return o.GIFPath != "" || o.VideoPath != ""
}

// RunReport summarizes one pipeline run for logs, the status endpoint, and
// the optional Kafka sink.
type RunReport struct {
	Region          string    `json:"region"`
	Layer           string    `json:"layer"`
	Source          string    `json:"source"` // "prerendered", "static", "frames"
	StartedAt       time.Time `json:"started_at"`
	DurationSeconds float64   `json:"duration_seconds"`
	FramesRequested int       `json:"frames_requested"`
	FramesFetched   int       `json:"frames_fetched"`
	FramesSkipped   int       `json:"frames_skipped"`
	GIFPath         string    `json:"gif_path,omitempty"`
	VideoPath       string    `json:"video_path,omitempty"`
	StillPaths      []string  `json:"still_paths,omitempty"`
	Success         bool      `json:"success"`
}
