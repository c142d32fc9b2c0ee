package coordinator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// AddWorktree provisions an isolated working tree at dir on a new branch
// started from startPoint (the target branch tip, usually). Workers get their
// own checkout this way; the shared one stays reserved for merges.
func (c *Coordinator) AddWorktree(ctx context.Context, dir, branch, startPoint string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return fmt.Errorf("create worktree dir: %w", err)
	}
	args := []string{"worktree", "add", dir, "-b", branch}
	if startPoint != "" {
		args = append(args, startPoint)
	}
	if _, err := c.git.Run(ctx, args...); err != nil {
		return fmt.Errorf("add worktree %q on branch %q: %w", dir, branch, err)
	}
	return nil
}

// RemoveWorktree detaches a task's working tree. The branch stays: its
// commits are what the merge queue integrates. Detached from the caller's
// context so cancellation still releases the worktree.
func (c *Coordinator) RemoveWorktree(ctx context.Context, dir string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.git.Run(context.WithoutCancel(ctx), "worktree", "remove", "--force", dir); err != nil {
		return fmt.Errorf("remove worktree %q: %w", dir, err)
	}
	return nil
}
