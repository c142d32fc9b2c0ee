package orchestrator

import (
	"fmt"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"swarm/internal/task"
)

// defaultHandoffRetention bounds how many handoffs stay queryable. Old
// handoffs age out; tasks are kept for the whole process lifetime.
const defaultHandoffRetention = 512

// Store holds the orchestrator's view of tasks and their handoffs.
type Store struct {
	mu       sync.RWMutex
	tasks    map[string]*task.Task
	handoffs *lru.Cache[string, *task.Handoff]
}

// NewStore creates a store retaining up to capacity handoffs; capacity <= 0
// uses the default.
func NewStore(capacity int) (*Store, error) {
	if capacity <= 0 {
		capacity = defaultHandoffRetention
	}
	cache, err := lru.New[string, *task.Handoff](capacity)
	if err != nil {
		return nil, fmt.Errorf("handoff cache: %w", err)
	}
	return &Store{
		tasks:    make(map[string]*task.Task),
		handoffs: cache,
	}, nil
}

// PutTask inserts or replaces a task.
func (s *Store) PutTask(t *task.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
}

// Task returns the task with the given id.
func (s *Store) Task(id string) (*task.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	return t, ok
}

// Tasks returns all tasks ordered by priority, then creation time.
func (s *Store) Tasks() []*task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Pending returns non-terminal tasks awaiting work, in priority order.
func (s *Store) Pending() []*task.Task {
	var pending []*task.Task
	for _, t := range s.Tasks() {
		if t.Status == task.StatusPending {
			pending = append(pending, t)
		}
	}
	return pending
}

// PutHandoff records a task's terminal report.
func (s *Store) PutHandoff(h *task.Handoff) {
	s.handoffs.Add(h.TaskID, h)
}

// Handoff returns the handoff recorded for a task, if still retained.
func (s *Store) Handoff(taskID string) (*task.Handoff, bool) {
	return s.handoffs.Get(taskID)
}
