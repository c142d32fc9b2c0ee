package task

import "time"

// HandoffStatus is the worker's own assessment of its result.
type HandoffStatus string

const (
	HandoffComplete HandoffStatus = "complete"
	HandoffPartial  HandoffStatus = "partial"
	HandoffBlocked  HandoffStatus = "blocked"
	HandoffFailed   HandoffStatus = "failed"
)

// Metrics aggregates what a worker did during one task.
type Metrics struct {
	LinesAdded    int   `json:"lines_added"`
	LinesRemoved  int   `json:"lines_removed"`
	FilesCreated  int   `json:"files_created"`
	FilesModified int   `json:"files_modified"`
	TokensUsed    int   `json:"tokens_used"`
	ToolCallCount int   `json:"tool_call_count"`
	DurationMs    int64 `json:"duration_ms"`
}

// Handoff is a worker's terminal report for exactly one task. It is created
// once and never mutated afterwards; every dispatched task produces exactly
// one, even on crash.
type Handoff struct {
	TaskID        string        `json:"task_id"`
	Status        HandoffStatus `json:"status"`
	Summary       string        `json:"summary"`
	Diff          string        `json:"diff,omitempty"`
	FilesChanged  []string      `json:"files_changed,omitempty"`
	Concerns      []string      `json:"concerns,omitempty"`
	Suggestions   []string      `json:"suggestions,omitempty"`
	Metrics       Metrics       `json:"metrics"`
	BuildExitCode *int          `json:"build_exit_code,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// NewFailureHandoff is the crash fallback: a failed handoff with zero metrics
// so the scheduler still receives exactly one terminal report for the task.
func NewFailureHandoff(taskID, reason string) *Handoff {
	if taskID == "" {
		taskID = "unknown"
	}
	return &Handoff{
		TaskID:    taskID,
		Status:    HandoffFailed,
		Summary:   reason,
		CreatedAt: time.Now(),
	}
}

// TaskStatus maps the worker's handoff status onto the task state machine.
func (h *Handoff) TaskStatus() Status {
	switch h.Status {
	case HandoffComplete, HandoffPartial:
		return StatusComplete
	default:
		return StatusFailed
	}
}
