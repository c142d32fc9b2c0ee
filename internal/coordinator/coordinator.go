// Package coordinator integrates worker branches into a target branch without
// ever leaving the shared repository in a conflicted or half-merged state.
//
// The coordinator is not safe for concurrent invocation against the same
// checkout from multiple processes; within one process an internal mutex
// serializes operations, and the orchestrator funnels cross-task requests
// through a single-writer queue.
package coordinator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"swarm/internal/logging"
)

// conflictCodes are the two-character porcelain status codes that mark a file
// as conflicting: both-modified, both-added, both-deleted, and the
// delete/modify combinations.
var conflictCodes = map[string]struct{}{
	"UU": {}, "AA": {}, "DD": {}, "AU": {}, "UA": {}, "DU": {}, "UD": {},
}

// Coordinator is the merge/rebase engine for one repository checkout.
type Coordinator struct {
	git    GitClient
	logger logging.Logger
	mu     sync.Mutex
}

// New creates a coordinator shelling out to git in repoDir.
func New(repoDir string, logger logging.Logger) *Coordinator {
	return NewWithClient(NewExecClient(repoDir), logger)
}

// NewWithClient creates a coordinator over an explicit GitClient. Tests pass
// an in-memory fake here.
func NewWithClient(client GitClient, logger logging.Logger) *Coordinator {
	return &Coordinator{git: client, logger: logging.OrNop(logger)}
}

// CreateBranch creates and checks out a new branch.
func (c *Coordinator) CreateBranch(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.git.Run(ctx, "checkout", "-b", name); err != nil {
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	return nil
}

// CheckoutBranch switches the working tree to an existing branch.
func (c *Coordinator) CheckoutBranch(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checkout(ctx, name)
}

func (c *Coordinator) checkout(ctx context.Context, name string) error {
	if _, err := c.git.Run(ctx, "checkout", name); err != nil {
		return fmt.Errorf("checkout branch %q: %w", name, err)
	}
	return nil
}

// MergeBranch integrates source into target using the given strategy. If
// target is empty it resolves to the currently checked-out branch; an empty
// strategy defaults to merge-commit.
//
// Content conflicts are never returned as errors: they come back as a
// MergeResult with Conflicted set and the exact conflicting file list, and
// the repository is restored to its pre-attempt state. Errors are reserved
// for infrastructural failures (bad branch, missing repo).
func (c *Coordinator) MergeBranch(ctx context.Context, source, target string, strategy Strategy) (*MergeResult, error) {
	if source == "" {
		return nil, fmt.Errorf("merge: source branch is required")
	}
	if strategy == "" {
		strategy = DefaultStrategy
	}
	if !strategy.Valid() {
		return nil, fmt.Errorf("merge %q: unknown strategy %q", source, strategy)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if target == "" {
		current, err := c.currentBranch(ctx)
		if err != nil {
			return nil, err
		}
		target = current
	}

	result := &MergeResult{Source: source, Target: target, Strategy: strategy}

	switch strategy {
	case StrategyFastForward:
		return c.mergeFastForward(ctx, result)
	case StrategyRebase:
		return c.mergeRebase(ctx, result)
	default:
		return c.mergeCommit(ctx, result)
	}
}

func (c *Coordinator) mergeFastForward(ctx context.Context, result *MergeResult) (*MergeResult, error) {
	if err := c.checkout(ctx, result.Target); err != nil {
		return nil, err
	}

	if _, err := c.git.Run(ctx, "merge", "--ff-only", result.Source); err != nil {
		// Conflict detection must happen while the conflict is still
		// materialized, before any abort.
		files := c.conflictingFiles(ctx)
		if len(files) > 0 {
			c.runCleanup(ctx, []cleanupStep{
				{"abort merge", []string{"merge", "--abort"}},
			})
			result.Conflicted = true
			result.ConflictingFiles = files
			result.Message = fmt.Sprintf("conflict fast-forwarding %s into %s", result.Source, result.Target)
			return result, nil
		}
		// A non-fast-forward condition is a precondition failure, not a
		// content conflict.
		result.Message = fmt.Sprintf("cannot fast-forward %s into %s: %v", result.Source, result.Target, err)
		return result, nil
	}

	result.Success = true
	result.Message = fmt.Sprintf("fast-forwarded %s to %s", result.Target, result.Source)
	return result, nil
}

func (c *Coordinator) mergeRebase(ctx context.Context, result *MergeResult) (*MergeResult, error) {
	orig, err := c.currentBranch(ctx)
	if err != nil {
		return nil, err
	}

	// A prior crashed attempt may have left a rebase in progress.
	if _, err := c.git.Run(ctx, "rebase", "--abort"); err == nil {
		c.logger.Warn("aborted stale in-progress rebase before merging %s", result.Source)
	}

	tmp := fmt.Sprintf("tmp-rebase-%d", time.Now().UnixNano())
	if _, err := c.git.Run(ctx, "checkout", "-b", tmp, result.Source); err != nil {
		return nil, fmt.Errorf("create rebase branch for %q: %w", result.Source, err)
	}

	if _, err := c.git.Run(ctx, "rebase", result.Target); err != nil {
		files := c.conflictingFiles(ctx)
		c.runCleanup(ctx, []cleanupStep{
			{"abort rebase", []string{"rebase", "--abort"}},
			{"restore " + orig, []string{"checkout", orig}},
			{"delete " + tmp, []string{"branch", "-D", tmp}},
		})
		if len(files) > 0 {
			result.Conflicted = true
			result.ConflictingFiles = files
			result.Message = fmt.Sprintf("conflict rebasing %s onto %s", result.Source, result.Target)
			return result, nil
		}
		result.Message = fmt.Sprintf("rebase of %s onto %s failed: %v", result.Source, result.Target, err)
		return result, nil
	}

	if err := c.checkout(ctx, result.Target); err != nil {
		c.runCleanup(ctx, []cleanupStep{
			{"restore " + orig, []string{"checkout", orig}},
			{"delete " + tmp, []string{"branch", "-D", tmp}},
		})
		return nil, err
	}

	if _, err := c.git.Run(ctx, "merge", "--ff-only", tmp); err != nil {
		c.runCleanup(ctx, []cleanupStep{
			{"restore " + orig, []string{"checkout", orig}},
			{"delete " + tmp, []string{"branch", "-D", tmp}},
		})
		result.Message = fmt.Sprintf("fast-forward of %s to rebased tip failed: %v", result.Target, err)
		return result, nil
	}

	c.runCleanup(ctx, []cleanupStep{
		{"delete " + tmp, []string{"branch", "-D", tmp}},
	})

	result.Success = true
	result.Message = fmt.Sprintf("rebased %s onto %s and fast-forwarded", result.Source, result.Target)
	return result, nil
}

func (c *Coordinator) mergeCommit(ctx context.Context, result *MergeResult) (*MergeResult, error) {
	if err := c.checkout(ctx, result.Target); err != nil {
		return nil, err
	}

	if _, err := c.git.Run(ctx, "merge", "--no-ff", "--no-edit", result.Source); err != nil {
		files := c.conflictingFiles(ctx)
		if len(files) > 0 {
			c.runCleanup(ctx, []cleanupStep{
				{"abort merge", []string{"merge", "--abort"}},
			})
			result.Conflicted = true
			result.ConflictingFiles = files
			result.Message = fmt.Sprintf("conflict merging %s into %s", result.Source, result.Target)
			return result, nil
		}
		result.Message = fmt.Sprintf("merge of %s into %s failed: %v", result.Source, result.Target, err)
		return result, nil
	}

	result.Success = true
	result.Message = fmt.Sprintf("merged %s into %s", result.Source, result.Target)
	return result, nil
}

// RebaseBranch rebases branch onto another branch in place, without a
// disposable branch. On conflict the rebase is aborted and reported.
func (c *Coordinator) RebaseBranch(ctx context.Context, branch, onto string) (*RebaseResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := &RebaseResult{Branch: branch, Onto: onto}

	if err := c.checkout(ctx, branch); err != nil {
		return nil, err
	}

	if _, err := c.git.Run(ctx, "rebase", onto); err != nil {
		files := c.conflictingFiles(ctx)
		if len(files) > 0 {
			c.runCleanup(ctx, []cleanupStep{
				{"abort rebase", []string{"rebase", "--abort"}},
			})
			result.Conflicted = true
			result.ConflictingFiles = files
			result.Message = fmt.Sprintf("conflict rebasing %s onto %s", branch, onto)
			return result, nil
		}
		result.Message = fmt.Sprintf("rebase of %s onto %s failed: %v", branch, onto, err)
		return result, nil
	}

	result.Success = true
	result.Message = fmt.Sprintf("rebased %s onto %s", branch, onto)
	return result, nil
}

// conflictingFiles returns the paths whose porcelain status code marks a
// conflict. Only meaningful while the conflict is still materialized, so it
// must run before any abort call. It runs detached from the caller's context:
// it sits on the error path, where the caller may already be cancelled.
func (c *Coordinator) conflictingFiles(ctx context.Context) []string {
	out, err := c.git.Run(context.WithoutCancel(ctx), "status", "--porcelain")
	if err != nil {
		c.logger.Warn("conflict detection: status failed: %v", err)
		return nil
	}

	var files []string
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		code := line[:2]
		if _, ok := conflictCodes[code]; ok {
			files = append(files, strings.TrimSpace(line[3:]))
		}
	}
	return files
}

func (c *Coordinator) currentBranch(ctx context.Context) (string, error) {
	out, err := c.git.Run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("resolve current branch: %w", err)
	}
	branch := strings.TrimSpace(out)
	if branch == "" {
		return "", fmt.Errorf("resolve current branch: empty output")
	}
	return branch, nil
}
