// Package procs tracks live external processes so a user-triggered
// cancellation can terminate all in-flight encoder work.
package procs

import (
	"log/slog"
	"sync"
)

// Process is the minimal handle the registry needs. *os.Process satisfies
// it; tests register fakes.
type Process interface {
	Kill() error
}

// Registry is a lock-protected set of live external process handles.
// Register and Unregister are idempotent. The registry is owned by the
// daemon and passed by reference to whatever spawns processes.
type Registry struct {
	mu     sync.Mutex
	procs  map[Process]struct{}
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		procs:  make(map[Process]struct{}),
		logger: logger,
	}
}

// Register adds a live process handle to the set.
func (r *Registry) Register(p Process) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.procs[p] = struct{}{}
}

// Unregister removes a process handle. Unknown handles are ignored.
func (r *Registry) Unregister(p Process) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.procs, p)
}

// Len returns the number of registered processes.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.procs)
}

// CancelAll kills every registered process best-effort and clears the set.
// Kill failures (typically "process already finished") are logged at debug
// and swallowed.
func (r *Registry) CancelAll() {
	r.mu.Lock()
	procs := make([]Process, 0, len(r.procs))
	for p := range r.procs {
		procs = append(procs, p)
	}
	r.procs = make(map[Process]struct{})
	r.mu.Unlock()

	for _, p := range procs {
		if err := p.Kill(); err != nil {
			r.logger.Debug("kill external process", "error", err)
		}
	}
	if len(procs) > 0 {
		r.logger.Info("cancelled external processes", "count", len(procs))
	}
}
