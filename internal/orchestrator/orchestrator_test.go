package orchestrator

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swarm/internal/coordinator"
	"swarm/internal/task"
)

// fakeGit is a thread-safe scripted git client; the merge loop runs in its
// own goroutine so call recording must be synchronized.
type fakeGit struct {
	mu      sync.Mutex
	calls   [][]string
	handler func(args []string) (string, error)
}

func (f *fakeGit) Run(_ context.Context, args ...string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, args)
	f.mu.Unlock()
	if f.handler == nil {
		return "", nil
	}
	return f.handler(args)
}

func (f *fakeGit) called(prefix ...string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if len(c) >= len(prefix) {
			match := true
			for i := range prefix {
				if c[i] != prefix[i] {
					match = false
					break
				}
			}
			if match {
				return true
			}
		}
	}
	return false
}

// scriptedRunner returns canned handoffs keyed by task description.
type scriptedRunner struct {
	mu       sync.Mutex
	status   task.HandoffStatus
	ran      []string
	runDelay time.Duration
}

func (r *scriptedRunner) Run(_ context.Context, t *task.Task) *task.Handoff {
	if r.runDelay > 0 {
		time.Sleep(r.runDelay)
	}
	r.mu.Lock()
	r.ran = append(r.ran, t.ID)
	r.mu.Unlock()
	return &task.Handoff{
		TaskID:    t.ID,
		Status:    r.status,
		Summary:   "scripted",
		Metrics:   task.Metrics{ToolCallCount: 2},
		CreatedAt: time.Now(),
	}
}

func newOrchestrator(t *testing.T, git *fakeGit, runner AgentRunner, cfg Config) *Orchestrator {
	t.Helper()
	if cfg.WorktreeDir == "" {
		cfg.WorktreeDir = t.TempDir()
	}
	coord := coordinator.NewWithClient(git, nil)
	o, err := New(cfg, coord, func(string) AgentRunner { return runner }, nil)
	require.NoError(t, err)
	t.Cleanup(o.Close)
	return o
}

func TestRunTasksCompletesAndMerges(t *testing.T) {
	git := &fakeGit{}
	runner := &scriptedRunner{status: task.HandoffComplete}
	o := newOrchestrator(t, git, runner, Config{Workers: 2, TargetBranch: "main"})

	t1 := task.New("first change", 5)
	t2 := task.New("second change", 5)

	err := o.RunTasks(context.Background(), []*task.Task{&t1, &t2})
	require.NoError(t, err)

	assert.Equal(t, task.StatusComplete, t1.Status)
	assert.Equal(t, task.StatusComplete, t2.Status)
	assert.True(t, git.called("merge", "--no-ff", "--no-edit", t1.Branch))
	assert.True(t, git.called("merge", "--no-ff", "--no-edit", t2.Branch))

	h, ok := o.Store().Handoff(t1.ID)
	require.True(t, ok)
	assert.Equal(t, task.HandoffComplete, h.Status)
}

func TestRunTasksConflictDerivesFixTask(t *testing.T) {
	git := &fakeGit{handler: func(args []string) (string, error) {
		joined := strings.Join(args, " ")
		switch {
		case strings.HasPrefix(joined, "merge --no-ff"):
			return "", errors.New("CONFLICT (content)")
		case joined == "status --porcelain":
			return "UU internal/shared.go\n", nil
		}
		return "", nil
	}}
	runner := &scriptedRunner{status: task.HandoffComplete}
	o := newOrchestrator(t, git, runner, Config{Workers: 1, TargetBranch: "main"})

	t1 := task.New("conflicting change", 5)
	require.NoError(t, o.RunTasks(context.Background(), []*task.Task{&t1}))

	assert.Equal(t, task.StatusComplete, t1.Status, "the task itself completed; the merge conflicted")

	var fix *task.Task
	for _, stored := range o.Store().Tasks() {
		if stored.ParentID == t1.ID {
			fix = stored
		}
	}
	require.NotNil(t, fix, "a conflict-fix task must be derived")
	assert.Equal(t, task.StatusPending, fix.Status)
	assert.Equal(t, 1, fix.Priority, "conflict fixes take top priority")
	assert.Equal(t, t1.Branch, fix.ConflictSourceBranch)
	assert.Equal(t, []string{"internal/shared.go"}, fix.Scope)
	assert.Equal(t, 1, fix.RetryCount)
}

func TestDeriveConflictFixTaskRetryBudget(t *testing.T) {
	o := newOrchestrator(t, &fakeGit{}, &scriptedRunner{status: task.HandoffComplete}, Config{})

	parent := task.New("stubborn", 5)
	parent.RetryCount = maxConflictRetries
	_, ok := o.DeriveConflictFixTask(&parent, &coordinator.MergeResult{
		Target:           "main",
		ConflictingFiles: []string{"a.go"},
	})
	assert.False(t, ok)
}

func TestFailedHandoffSkipsMerge(t *testing.T) {
	git := &fakeGit{}
	runner := &scriptedRunner{status: task.HandoffFailed}
	o := newOrchestrator(t, git, runner, Config{Workers: 1})

	t1 := task.New("doomed", 5)
	require.NoError(t, o.RunTasks(context.Background(), []*task.Task{&t1}))

	assert.Equal(t, task.StatusFailed, t1.Status)
	assert.False(t, git.called("merge"), "failed work is never merged")
}

func TestPartialHandoffStillMerges(t *testing.T) {
	git := &fakeGit{}
	runner := &scriptedRunner{status: task.HandoffPartial}
	o := newOrchestrator(t, git, runner, Config{Workers: 1})

	t1 := task.New("partial", 5)
	require.NoError(t, o.RunTasks(context.Background(), []*task.Task{&t1}))

	assert.Equal(t, task.StatusComplete, t1.Status, "partial work is still usable work")
	assert.True(t, git.called("merge"))
}

func TestEnqueueMergeAfterClose(t *testing.T) {
	o := newOrchestrator(t, &fakeGit{}, &scriptedRunner{status: task.HandoffComplete}, Config{})
	o.Close()

	_, err := o.EnqueueMerge(context.Background(), "swarm/x")
	assert.Error(t, err)
}

func TestWorktreeProvisionFailureFailsTask(t *testing.T) {
	git := &fakeGit{handler: func(args []string) (string, error) {
		if len(args) >= 2 && args[0] == "worktree" && args[1] == "add" {
			return "", errors.New("fatal: not a git repository")
		}
		return "", nil
	}}
	runner := &scriptedRunner{status: task.HandoffComplete}
	o := newOrchestrator(t, git, runner, Config{Workers: 1})

	t1 := task.New("cannot start", 5)
	require.NoError(t, o.RunTasks(context.Background(), []*task.Task{&t1}))

	assert.Equal(t, task.StatusFailed, t1.Status)
	h, ok := o.Store().Handoff(t1.ID)
	require.True(t, ok)
	assert.Equal(t, task.HandoffFailed, h.Status)
	assert.Empty(t, runner.ran, "the agent never runs without its worktree")
}

// Parallel tasks must each get their own working tree; only the merge queue
// touches the shared checkout. Two tasks run concurrently and each commits on
// its own branch inside its own directory.
func TestParallelTasksGetIsolatedWorktrees(t *testing.T) {
	git := &fakeGit{}
	runner := &scriptedRunner{status: task.HandoffComplete, runDelay: 20 * time.Millisecond}

	var mu sync.Mutex
	var workdirs []string
	factory := func(workdir string) AgentRunner {
		mu.Lock()
		workdirs = append(workdirs, workdir)
		mu.Unlock()
		return runner
	}

	root := t.TempDir()
	coord := coordinator.NewWithClient(git, nil)
	o, err := New(Config{Workers: 2, TargetBranch: "main", WorktreeDir: root}, coord, factory, nil)
	require.NoError(t, err)
	t.Cleanup(o.Close)

	t1 := task.New("first change", 5)
	t2 := task.New("second change", 5)
	require.NoError(t, o.RunTasks(context.Background(), []*task.Task{&t1, &t2}))

	require.Len(t, workdirs, 2)
	assert.NotEqual(t, workdirs[0], workdirs[1], "each task runs in its own directory")
	for _, tk := range []*task.Task{&t1, &t2} {
		dir := filepath.Join(root, tk.ID)
		assert.Contains(t, workdirs, dir)
		assert.True(t, git.called("worktree", "add", dir, "-b", tk.Branch, "main"),
			"task %s must get a worktree on its own branch off the target", tk.ID)
		assert.True(t, git.called("worktree", "remove", "--force", dir),
			"task %s worktree must be released", tk.ID)
	}
	assert.False(t, git.called("checkout", "-b"), "workers never branch the shared checkout")
}

func TestNewRejectsUnknownStrategy(t *testing.T) {
	coord := coordinator.NewWithClient(&fakeGit{}, nil)
	_, err := New(Config{MergeStrategy: coordinator.Strategy("octopus")}, coord,
		func(string) AgentRunner { return &scriptedRunner{} }, nil)
	assert.Error(t, err)
}
