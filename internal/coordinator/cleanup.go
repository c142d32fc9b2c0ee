package coordinator

import "context"

// cleanupStep is one compensating action after a failed or finished merge
// attempt: aborting an in-progress merge/rebase, restoring the original
// checkout, deleting a disposable branch.
type cleanupStep struct {
	name string
	args []string
}

// runCleanup attempts every step independently. Step failures are logged and
// collected but never returned: a cleanup failure must not mask the primary
// result already computed.
//
// Cleanup runs detached from the caller's context: cancellation (SIGINT
// mid-merge) must not leave MERGE_HEAD or an in-progress rebase behind.
func (c *Coordinator) runCleanup(ctx context.Context, steps []cleanupStep) []error {
	ctx = context.WithoutCancel(ctx)
	var failures []error
	for _, step := range steps {
		if _, err := c.git.Run(ctx, step.args...); err != nil {
			c.logger.Warn("cleanup step %q failed: %v", step.name, err)
			failures = append(failures, err)
		} else {
			c.logger.Debug("cleanup step %q done", step.name)
		}
	}
	return failures
}
