package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAssigned  Status = "assigned"
	StatusRunning   Status = "running"
	StatusComplete  Status = "complete"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Valid returns true if the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusRunning, StatusComplete, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	switch s {
	case StatusComplete, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// rank orders the forward-only progression. Terminal states share a rank.
func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusAssigned:
		return 1
	case StatusRunning:
		return 2
	case StatusComplete, StatusFailed, StatusCancelled:
		return 3
	default:
		return -1
	}
}

// DefaultBranchPrefix namespaces task branches inside the shared repository.
const DefaultBranchPrefix = "swarm/"

// Task is a unit of work bound to one git branch, assigned to one worker.
type Task struct {
	ID                   string    `json:"id"`
	ParentID             string    `json:"parent_id,omitempty"`
	Description          string    `json:"description"`
	Scope                []string  `json:"scope,omitempty"`
	Acceptance           string    `json:"acceptance,omitempty"`
	Branch               string    `json:"branch"`
	Status               Status    `json:"status"`
	AssignedTo           string    `json:"assigned_to,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
	Priority             int       `json:"priority"`
	ConflictSourceBranch string    `json:"conflict_source_branch,omitempty"`
	RetryCount           int       `json:"retry_count,omitempty"`
}

// New creates a pending task with a generated id and a prefix-namespaced
// branch derived from it. Priority runs 1 (highest) to 10 (lowest).
func New(description string, priority int) Task {
	if priority < 1 {
		priority = 1
	}
	if priority > 10 {
		priority = 10
	}
	id := uuid.NewString()
	now := time.Now()
	return Task{
		ID:          id,
		Description: description,
		Branch:      BranchName(DefaultBranchPrefix, id),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		Priority:    priority,
	}
}

// BranchName derives the git branch for a task id under the given prefix.
func BranchName(prefix, id string) string {
	sanitized := strings.TrimSpace(id)
	sanitized = strings.ReplaceAll(sanitized, " ", "-")
	sanitized = strings.ReplaceAll(sanitized, "/", "-")
	sanitized = strings.ReplaceAll(sanitized, "\\", "-")
	if sanitized == "" {
		sanitized = "task"
	}
	if prefix == "" {
		prefix = DefaultBranchPrefix
	}
	return prefix + sanitized
}

// CanTransition reports whether the status may move from s to next. Status
// only moves forward; cancellation is allowed from any non-terminal state.
func (s Status) CanTransition(next Status) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if next == StatusCancelled {
		return !s.Terminal()
	}
	return next.rank() == s.rank()+1
}

// Transition moves the task to the next status, updating the timestamp.
func (t *Task) Transition(next Status) error {
	if !t.Status.CanTransition(next) {
		return fmt.Errorf("task %s: invalid transition %s -> %s", t.ID, t.Status, next)
	}
	t.Status = next
	t.UpdatedAt = time.Now()
	return nil
}

// Assign binds the task to a sandbox and advances it to assigned.
func (t *Task) Assign(sandboxID string) error {
	if err := t.Transition(StatusAssigned); err != nil {
		return err
	}
	t.AssignedTo = sandboxID
	return nil
}
