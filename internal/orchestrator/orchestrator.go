// Package orchestrator schedules tasks across a pool of agents and funnels
// every repository integration through a single merge queue, so concurrent
// workers never race on the shared checkout.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"swarm/internal/coordinator"
	"swarm/internal/logging"
	"swarm/internal/task"
)

// maxConflictRetries bounds the conflict-fix chain spawned from one task.
const maxConflictRetries = 3

// AgentRunner executes one task to completion and always returns a handoff.
type AgentRunner interface {
	Run(ctx context.Context, t *task.Task) *task.Handoff
}

// RunnerFactory builds an agent runner bound to one isolated working tree.
// The orchestrator calls it once per task with that task's worktree path, so
// no two agents ever share a checkout.
type RunnerFactory func(workdir string) AgentRunner

// Config tunes the orchestrator.
type Config struct {
	Workers          int
	TargetBranch     string
	MergeStrategy    coordinator.Strategy
	HandoffRetention int

	// WorktreeDir is where per-task worktrees are provisioned. Empty uses a
	// directory under the system temp dir.
	WorktreeDir string
}

type mergeRequest struct {
	ctx      context.Context
	source   string
	strategy coordinator.Strategy
	reply    chan mergeReply
}

type mergeReply struct {
	result *coordinator.MergeResult
	err    error
}

// Orchestrator owns the task store, the agent pool and the merge queue.
type Orchestrator struct {
	cfg       Config
	coord     *coordinator.Coordinator
	newRunner RunnerFactory
	store     *Store
	metrics   *Metrics
	logger    logging.Logger

	mergeCh   chan mergeRequest
	closeOnce sync.Once
	done      chan struct{}
	workerSeq atomic.Int64
}

// New creates an orchestrator and starts its merge queue. Close must be
// called to stop the queue.
func New(cfg Config, coord *coordinator.Coordinator, newRunner RunnerFactory, logger logging.Logger) (*Orchestrator, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.TargetBranch == "" {
		cfg.TargetBranch = "main"
	}
	if cfg.MergeStrategy == "" {
		cfg.MergeStrategy = coordinator.DefaultStrategy
	}
	if !cfg.MergeStrategy.Valid() {
		return nil, fmt.Errorf("orchestrator: unknown merge strategy %q", cfg.MergeStrategy)
	}
	if cfg.WorktreeDir == "" {
		cfg.WorktreeDir = filepath.Join(os.TempDir(), "swarm-worktrees")
	}

	store, err := NewStore(cfg.HandoffRetention)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		cfg:       cfg,
		coord:     coord,
		newRunner: newRunner,
		store:     store,
		metrics:   defaultMetrics(),
		logger:    logging.OrNop(logger),
		mergeCh:   make(chan mergeRequest),
		done:      make(chan struct{}),
	}
	go o.mergeLoop()
	return o, nil
}

// Close stops the merge queue. Pending EnqueueMerge calls fail.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		close(o.done)
	})
}

// Store exposes the task/handoff store for status queries.
func (o *Orchestrator) Store() *Store { return o.store }

// mergeLoop is the single writer against the shared checkout. All merges are
// serialized here regardless of how many workers request them.
func (o *Orchestrator) mergeLoop() {
	for {
		select {
		case <-o.done:
			return
		case req := <-o.mergeCh:
			result, err := o.coord.MergeBranch(req.ctx, req.source, o.cfg.TargetBranch, req.strategy)
			if result != nil {
				o.metrics.ObserveMerge(string(result.Strategy), result.Conflicted, result.Success)
			}
			req.reply <- mergeReply{result: result, err: err}
		}
	}
}

// EnqueueMerge requests integration of source into the target branch and
// waits for the result. Merges from concurrent workers are processed one at a
// time in arrival order.
func (o *Orchestrator) EnqueueMerge(ctx context.Context, source string) (*coordinator.MergeResult, error) {
	req := mergeRequest{
		ctx:      ctx,
		source:   source,
		strategy: o.cfg.MergeStrategy,
		reply:    make(chan mergeReply, 1),
	}

	select {
	case o.mergeCh <- req:
	case <-o.done:
		return nil, fmt.Errorf("merge queue closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case reply := <-req.reply:
		return reply.result, reply.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// RunTasks executes the given tasks across the worker pool, merging each
// completed branch as it lands. It returns after every task has a terminal
// status; derived conflict-fix tasks are stored as pending for a later round.
func (o *Orchestrator) RunTasks(ctx context.Context, tasks []*task.Task) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Workers)

	for _, t := range tasks {
		o.store.PutTask(t)
	}
	for _, t := range tasks {
		t := t
		g.Go(func() error {
			o.runTask(ctx, t)
			return nil
		})
	}
	return g.Wait()
}

func (o *Orchestrator) runTask(ctx context.Context, t *task.Task) {
	workerID := fmt.Sprintf("agent-%d", o.workerSeq.Add(1))
	if err := t.Assign(workerID); err != nil {
		o.logger.Error("task %s: %v", t.ID, err)
		return
	}
	if err := t.Transition(task.StatusRunning); err != nil {
		o.logger.Error("task %s: %v", t.ID, err)
		return
	}

	o.metrics.IncActiveTasks()
	defer o.metrics.DecActiveTasks()

	// Each task works in its own worktree so parallel agents never touch the
	// shared checkout, which stays reserved for the merge queue.
	workdir := filepath.Join(o.cfg.WorktreeDir, t.ID)
	if err := o.coord.AddWorktree(ctx, workdir, t.Branch, o.cfg.TargetBranch); err != nil {
		o.logger.Error("task %s: %v", t.ID, err)
		o.ApplyHandoff(t, task.NewFailureHandoff(t.ID, fmt.Sprintf("provision worktree: %v", err)))
		return
	}
	defer func() {
		if err := o.coord.RemoveWorktree(ctx, workdir); err != nil {
			o.logger.Warn("task %s: %v", t.ID, err)
		}
	}()

	o.logger.Info("task %s: dispatched to %s on branch %s in %s", t.ID, workerID, t.Branch, workdir)
	start := time.Now()
	handoff := o.newRunner(workdir).Run(ctx, t)
	o.metrics.ObserveRun(string(handoff.Status), handoff.Metrics.ToolCallCount, time.Since(start))

	o.ApplyHandoff(t, handoff)
	if t.Status != task.StatusComplete {
		o.logger.Warn("task %s: %s (%s)", t.ID, t.Status, handoff.Summary)
		return
	}

	result, err := o.EnqueueMerge(ctx, t.Branch)
	if err != nil {
		o.logger.Error("task %s: merge of %s failed: %v", t.ID, t.Branch, err)
		return
	}
	if result.Conflicted {
		o.logger.Warn("task %s: merge of %s conflicted on %s",
			t.ID, t.Branch, strings.Join(result.ConflictingFiles, ", "))
		if fix, ok := o.DeriveConflictFixTask(t, result); ok {
			o.store.PutTask(&fix)
			o.logger.Info("task %s: derived conflict-fix task %s", t.ID, fix.ID)
		} else {
			o.logger.Error("task %s: conflict retry budget exhausted, manual resolution needed", t.ID)
		}
		return
	}
	if !result.Success {
		o.logger.Warn("task %s: merge of %s did not land: %s", t.ID, t.Branch, result.Message)
		return
	}
	o.logger.Info("task %s: merged %s into %s", t.ID, t.Branch, result.Target)
}

// ApplyHandoff records the handoff and moves the task to the matching
// terminal status.
func (o *Orchestrator) ApplyHandoff(t *task.Task, h *task.Handoff) {
	o.store.PutHandoff(h)
	if err := t.Transition(h.TaskStatus()); err != nil {
		o.logger.Error("task %s: %v", t.ID, err)
	}
}

// DeriveConflictFixTask builds a high-priority follow-up task that resolves
// the conflicts a merge left behind. Returns false once the retry budget for
// this chain is spent.
func (o *Orchestrator) DeriveConflictFixTask(parent *task.Task, result *coordinator.MergeResult) (task.Task, bool) {
	if parent.RetryCount >= maxConflictRetries {
		return task.Task{}, false
	}

	fix := task.New(fmt.Sprintf(
		"Resolve merge conflicts between %s and %s in: %s",
		parent.Branch, result.Target, strings.Join(result.ConflictingFiles, ", ")), 1)
	fix.ParentID = parent.ID
	fix.ConflictSourceBranch = parent.Branch
	fix.RetryCount = parent.RetryCount + 1
	fix.Scope = result.ConflictingFiles
	return fix, true
}
