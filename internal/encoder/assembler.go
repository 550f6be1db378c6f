package encoder

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/skycastlabs/radarloop/internal/domain"
	"github.com/skycastlabs/radarloop/internal/observability"
)

// minOutputBytes is the smallest plausible encoder output. Anything under
// this is treated as a failed encode even when ffmpeg exited zero.
const minOutputBytes = 256

// Assembler orders staged frames into animated outputs via ffmpeg.
type Assembler struct {
	ffmpeg    *FFmpeg
	frameRate int
	width     int
	height    int
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewAssembler creates an assembler targeting the given output resolution.
func NewAssembler(ffmpeg *FFmpeg, frameRate, width, height int, metrics *observability.Metrics, logger *slog.Logger) *Assembler {
	return &Assembler{
		ffmpeg:    ffmpeg,
		frameRate: frameRate,
		width:     width,
		height:    height,
		logger:    logger,
		metrics:   metrics,
	}
}

// Assemble encodes the staged frames into {prefix}.gif and {prefix}.mp4
// under outDir. Every failure mode is soft: the returned output reports
// Success=false and keeps FramePaths populated so the raw frames remain
// usable, but Assemble itself never returns an error for encoder problems.
func (a *Assembler) Assemble(ctx context.Context, framePattern string, framePaths []string, outDir, prefix string) domain.AnimationOutput {
	out := domain.AnimationOutput{FramePaths: framePaths}

	if len(framePaths) == 0 {
		a.logger.Warn("no frames to assemble, skipping encoder")
		return out
	}
	if !a.ffmpeg.Available() {
		a.logger.Warn("encoder binary not found, leaving raw frames in place",
			"binary", a.ffmpeg.binary,
			"frames", len(framePaths),
		)
		return out
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		a.logger.Warn("create output directory", "dir", outDir, "error", err)
		return out
	}

	gifPath := filepath.Join(outDir, prefix+".gif")
	if a.encode(ctx, "gif", framePattern, gifPath) {
		out.GIFPath = gifPath
	}

	videoPath := filepath.Join(outDir, prefix+".mp4")
	if a.encode(ctx, "mp4", framePattern, videoPath) {
		out.VideoPath = videoPath
	}

	out.Success = out.Animated()
	return out
}

// encode runs one ffmpeg invocation and sanity-checks its output file.
func (a *Assembler) encode(ctx context.Context, kind, framePattern, outPath string) bool {
	start := time.Now()

	var stderr string
	var err error
	switch kind {
	case "gif":
		stderr, err = a.ffmpeg.EncodeGIF(ctx, framePattern, outPath, a.frameRate, a.width, a.height)
	default:
		stderr, err = a.ffmpeg.EncodeMP4(ctx, framePattern, outPath, a.frameRate, a.width, a.height)
	}
	a.metrics.EncodeDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		a.metrics.EncodeFailures.Inc()
		a.logger.Warn("encoder run failed",
			"kind", kind,
			"error", err,
			"stderr", tail(stderr, 800),
		)
		return false
	}

	info, statErr := os.Stat(outPath)
	if statErr != nil || info.Size() < minOutputBytes {
		a.metrics.EncodeFailures.Inc()
		a.logger.Warn("encoder produced no usable output",
			"kind", kind,
			"path", outPath,
			"stderr", tail(stderr, 800),
		)
		_ = os.Remove(outPath)
		return false
	}

	a.logger.Info("encoded animation",
		"kind", kind,
		"path", outPath,
		"bytes", info.Size(),
		"duration", time.Since(start).Round(time.Millisecond).String(),
	)
	return true
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
