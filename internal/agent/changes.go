package agent

import (
	"context"
	"strconv"
	"strings"

	"swarm/internal/task"
)

// maxHandoffDiff caps the diff carried inside a handoff.
const maxHandoffDiff = 256 * 1024

// collectChanges measures everything the worker changed since its start
// commit: committed work and anything still uncommitted in the tree.
func (r *Runner) collectChanges(ctx context.Context, startCommit string) (string, []string, task.Metrics) {
	var metrics task.Metrics
	if startCommit == "" {
		return "", nil, metrics
	}

	numstat, err := r.git.Run(ctx, "diff", "--numstat", startCommit)
	if err != nil {
		r.logger.Warn("collect changes: numstat failed: %v", err)
		return "", nil, metrics
	}
	files := parseNumstat(numstat, &metrics)

	created, err := r.git.Run(ctx, "diff", "--name-only", "--diff-filter=A", startCommit)
	if err == nil {
		metrics.FilesCreated = countLines(created)
	}
	metrics.FilesModified = len(files) - metrics.FilesCreated
	if metrics.FilesModified < 0 {
		metrics.FilesModified = 0
	}

	diff, err := r.git.Run(ctx, "diff", startCommit)
	if err != nil {
		r.logger.Warn("collect changes: diff failed: %v", err)
		diff = ""
	}
	if len(diff) > maxHandoffDiff {
		diff = diff[:maxHandoffDiff] + "\n... [diff truncated]"
	}
	return diff, files, metrics
}

// parseNumstat reads `git diff --numstat` output. Binary files report "-" for
// both counts; they still count as changed files.
func parseNumstat(out string, metrics *task.Metrics) []string {
	var files []string
	for _, line := range strings.Split(out, "\n") {
		fields := strings.SplitN(strings.TrimSpace(line), "\t", 3)
		if len(fields) < 3 || fields[2] == "" {
			continue
		}
		if added, err := strconv.Atoi(fields[0]); err == nil {
			metrics.LinesAdded += added
		}
		if removed, err := strconv.Atoi(fields[1]); err == nil {
			metrics.LinesRemoved += removed
		}
		files = append(files, fields[2])
	}
	return files
}

func countLines(out string) int {
	count := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}
