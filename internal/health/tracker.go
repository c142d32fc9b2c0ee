// Package health maintains a per-sandbox liveness and resource snapshot for
// out-of-band monitoring. The tracker performs no I/O of its own.
package health

import (
	"runtime"
	"sync"
	"time"
)

// Status summarizes whether a sandbox is considered operational.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// Snapshot is a point-in-time view of one sandbox.
type Snapshot struct {
	Status      Status        `json:"status"`
	Reason      string        `json:"reason,omitempty"`
	Uptime      time.Duration `json:"uptime"`
	MemoryBytes uint64        `json:"memory_bytes"`
	CurrentTask string        `json:"current_task,omitempty"`
	LastPing    time.Time     `json:"last_ping"`
}

// Tracker records the mutable health state of a single sandbox.
type Tracker struct {
	mu          sync.Mutex
	started     time.Time
	currentTask string
	unhealthy   bool
	reason      string
	lastPing    time.Time
}

// NewTracker starts tracking from now.
func NewTracker() *Tracker {
	now := time.Now()
	return &Tracker{started: now, lastPing: now}
}

// SetTask marks the sandbox as working on the given task.
func (t *Tracker) SetTask(taskID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.currentTask = taskID
}

// ClearTask marks the sandbox as idle.
func (t *Tracker) ClearTask() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.currentTask = ""
}

// SetUnhealthy flips the tracker into the unhealthy state with a reason.
func (t *Tracker) SetUnhealthy(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.unhealthy = true
	t.reason = reason
}

// Ping records a liveness signal.
func (t *Tracker) Ping() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastPing = time.Now()
}

// Snapshot returns the current health view.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	status := StatusHealthy
	if t.unhealthy {
		status = StatusUnhealthy
	}
	return Snapshot{
		Status:      status,
		Reason:      t.reason,
		Uptime:      time.Since(t.started),
		MemoryBytes: mem.Alloc,
		CurrentTask: t.currentTask,
		LastPing:    t.lastPing,
	}
}
