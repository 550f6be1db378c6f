// Package staging manages per-run frame staging directories under a common
// root. A file lock per region guarantees at most one animation build per
// region at a time; distinct regions stage into distinct directories and
// may run concurrently.
package staging

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// ErrRegionBusy is returned when another build already holds the region lock.
var ErrRegionBusy = errors.New("staging: region build already in progress")

// Manager creates and cleans staging directories under root.
type Manager struct {
	root   string
	logger *slog.Logger
}

// NewManager creates a staging manager rooted at root.
func NewManager(root string, logger *slog.Logger) *Manager {
	return &Manager{root: root, logger: logger}
}

// Acquire locks the region and creates a fresh staging directory for one
// run. The caller must Release the returned run.
func (m *Manager) Acquire(region string) (*Run, error) {
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return nil, fmt.Errorf("create staging root: %w", err)
	}

	lock := flock.New(filepath.Join(m.root, region+".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire region lock: %w", err)
	}
	if !locked {
		return nil, ErrRegionBusy
	}

	dir := filepath.Join(m.root, fmt.Sprintf("%s-%s", region, uuid.NewString()[:8]))
	if err := os.Mkdir(dir, 0o755); err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("create staging directory: %w", err)
	}

	return &Run{Dir: dir, lock: lock, logger: m.logger}, nil
}

// Run is one acquired staging directory plus its region lock.
type Run struct {
	Dir    string
	lock   *flock.Flock
	logger *slog.Logger
}

// FramePath returns the fixed-width numeric path for frame i, so that
// lexicographic order equals chronological order.
func (r *Run) FramePath(i int) string {
	return filepath.Join(r.Dir, fmt.Sprintf("frame_%03d.png", i))
}

// FramePattern returns the ffmpeg input pattern for the staged frames.
func (r *Run) FramePattern() string {
	return filepath.Join(r.Dir, "frame_%03d.png")
}

// Release unlocks the region and, when removeFrames is true, deletes the
// staging directory. Frames are kept on soft failures so they remain
// available for manual use.
func (r *Run) Release(removeFrames bool) {
	if removeFrames {
		if err := os.RemoveAll(r.Dir); err != nil {
			r.logger.Warn("remove staging directory", "dir", r.Dir, "error", err)
		}
	}
	if err := r.lock.Unlock(); err != nil {
		r.logger.Warn("release region lock", "error", err)
	}
}
