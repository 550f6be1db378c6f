// Package encoder wraps the external ffmpeg binary to turn staged frames
// into a looping GIF and an MP4. The binary is an optional collaborator:
// when it is missing the caller degrades to raw frames instead of failing.
package encoder

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/skycastlabs/radarloop/internal/procs"
)

// Executor abstracts command execution for testability.
type Executor interface {
	// Run executes binary with args and returns captured stderr.
	Run(ctx context.Context, binary string, args []string) (stderr string, err error)
}

// Option configures the FFmpeg wrapper.
type Option func(*FFmpeg)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(f *FFmpeg) {
		if exec != nil {
			f.exec = exec
		}
	}
}

// WithLookPath injects a custom binary locator (primarily for tests).
func WithLookPath(lookPath func(string) (string, error)) Option {
	return func(f *FFmpeg) {
		if lookPath != nil {
			f.lookPath = lookPath
		}
	}
}

// FFmpeg invokes the encoder binary with a bounded timeout, registering
// every spawned process so cancellation can kill it.
type FFmpeg struct {
	binary   string
	timeout  time.Duration
	exec     Executor
	lookPath func(string) (string, error)
}

// New constructs an FFmpeg wrapper. Processes it spawns are registered with
// registry for the duration of each run.
func New(binary string, timeout time.Duration, registry *procs.Registry, opts ...Option) *FFmpeg {
	f := &FFmpeg{
		binary:   binary,
		timeout:  timeout,
		exec:     &commandExecutor{registry: registry},
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Available reports whether the encoder binary can be located.
func (f *FFmpeg) Available() bool {
	_, err := f.lookPath(f.binary)
	return err == nil
}

// scalePadFilter fits the input into width×height preserving aspect ratio,
// centering it on padding.
func scalePadFilter(width, height int) string {
	return fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		width, height, width, height)
}

// EncodeGIF builds a looping GIF from the numbered frame pattern.
func (f *FFmpeg) EncodeGIF(ctx context.Context, framePattern, outPath string, frameRate, width, height int) (string, error) {
	args := []string{
		"-y",
		"-framerate", fmt.Sprintf("%d", frameRate),
		"-i", framePattern,
		"-vf", scalePadFilter(width, height),
		"-loop", "0",
		outPath,
	}
	return f.run(ctx, args)
}

// EncodeMP4 builds an H.264 MP4 from the numbered frame pattern.
func (f *FFmpeg) EncodeMP4(ctx context.Context, framePattern, outPath string, frameRate, width, height int) (string, error) {
	args := []string{
		"-y",
		"-framerate", fmt.Sprintf("%d", frameRate),
		"-i", framePattern,
		"-vf", scalePadFilter(width, height),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		outPath,
	}
	return f.run(ctx, args)
}

func (f *FFmpeg) run(ctx context.Context, args []string) (string, error) {
	runCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	return f.exec.Run(runCtx, f.binary, args)
}

// commandExecutor runs the real binary, capturing stdout and stderr in
// in-memory buffers that os/exec drains concurrently with the wait.
type commandExecutor struct {
	registry *procs.Registry
}

func (e *commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("start %s: %w", binary, err)
	}

	if e.registry != nil {
		e.registry.Register(cmd.Process)
		defer e.registry.Unregister(cmd.Process)
	}

	if err := cmd.Wait(); err != nil {
		return stderr.String(), fmt.Errorf("%s: %w", binary, err)
	}
	return stderr.String(), nil
}
