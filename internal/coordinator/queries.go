package coordinator

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"swarm/internal/logging"
)

// Commit log records are delimited by a non-printable separator so multi-line
// subjects cannot be mistaken for record boundaries.
const (
	commitRecordSep = "\x1e"
	commitFieldSep  = "\x1f"
)

var (
	filesChangedRe = regexp.MustCompile(`(\d+) files? changed`)
	insertionsRe   = regexp.MustCompile(`(\d+) insertions?\(\+\)`)
	deletionsRe    = regexp.MustCompile(`(\d+) deletions?\(-\)`)
)

// CurrentBranch returns the currently checked-out branch.
func (c *Coordinator) CurrentBranch(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentBranch(ctx)
}

// GetDiffStat summarizes uncommitted working-tree changes against HEAD. A
// clean tree yields all zeros; a missing field in the summary defaults to 0.
func (c *Coordinator) GetDiffStat(ctx context.Context) (*DiffStat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out, err := c.git.Run(ctx, "diff", "HEAD", "--shortstat")
	if err != nil {
		return nil, fmt.Errorf("diff stat: %w", err)
	}
	return parseShortStat(out), nil
}

func parseShortStat(out string) *DiffStat {
	stat := &DiffStat{}
	stat.FilesChanged = firstInt(filesChangedRe, out)
	stat.LinesAdded = firstInt(insertionsRe, out)
	stat.LinesRemoved = firstInt(deletionsRe, out)
	return stat
}

func firstInt(re *regexp.Regexp, s string) int {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// GetRecentCommits returns up to count commits in reverse-chronological
// order. Message carries the subject line only; Date is unix milliseconds.
func (c *Coordinator) GetRecentCommits(ctx context.Context, count int) ([]CommitInfo, error) {
	if count <= 0 {
		return nil, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	format := "%H" + commitFieldSep + "%an" + commitFieldSep + "%ct" + commitFieldSep + "%s" + commitRecordSep
	out, err := c.git.Run(ctx, "log", "-n", strconv.Itoa(count), "--format="+format)
	if err != nil {
		return nil, fmt.Errorf("recent commits: %w", err)
	}
	return parseCommitLog(out, c.logger), nil
}

func parseCommitLog(out string, logger logging.Logger) []CommitInfo {
	logger = logging.OrNop(logger)
	var commits []CommitInfo
	for _, record := range strings.Split(out, commitRecordSep) {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}
		fields := strings.SplitN(record, commitFieldSep, 4)
		if len(fields) < 4 {
			continue
		}
		hash := strings.TrimSpace(fields[0])
		seconds, err := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64)
		if err != nil {
			// Keep the commit (hash and subject are still useful) but flag the
			// zero date instead of passing off 1970 as real.
			logger.Warn("commit %s: malformed timestamp %q", hash, strings.TrimSpace(fields[2]))
		}
		commits = append(commits, CommitInfo{
			Hash:    hash,
			Author:  fields[1],
			Date:    seconds * 1000,
			Message: fields[3],
		})
	}
	return commits
}

// GetFileTree lists tracked files, optionally limited to maxDepth path
// segments. maxDepth <= 0 means unlimited.
func (c *Coordinator) GetFileTree(ctx context.Context, maxDepth int) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out, err := c.git.Run(ctx, "ls-files")
	if err != nil {
		return nil, fmt.Errorf("file tree: %w", err)
	}

	var files []string
	for _, line := range strings.Split(out, "\n") {
		path := strings.TrimSpace(line)
		if path == "" {
			continue
		}
		if maxDepth > 0 && strings.Count(path, "/") >= maxDepth {
			continue
		}
		files = append(files, path)
	}
	return files, nil
}

// HasUncommittedChanges reports whether the working tree is dirty.
func (c *Coordinator) HasUncommittedChanges(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out, err := c.git.Run(ctx, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("status: %w", err)
	}
	return strings.TrimSpace(out) != "", nil
}
