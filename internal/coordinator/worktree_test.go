package coordinator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddWorktree(t *testing.T) {
	git := &fakeGit{}
	coord := NewWithClient(git, nil)

	dir := filepath.Join(t.TempDir(), "worktrees", "t-1")
	err := coord.AddWorktree(context.Background(), dir, "swarm/t-1", "main")
	require.NoError(t, err)

	assert.True(t, git.called("worktree", "add", dir, "-b", "swarm/t-1", "main"))

	// The parent directory is created up front so git can place the worktree.
	info, err := os.Stat(filepath.Dir(dir))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestAddWorktreeWithoutStartPoint(t *testing.T) {
	git := &fakeGit{}
	coord := NewWithClient(git, nil)

	dir := filepath.Join(t.TempDir(), "t-2")
	require.NoError(t, coord.AddWorktree(context.Background(), dir, "swarm/t-2", ""))

	idx := git.indexOf("worktree", "add")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, []string{"worktree", "add", dir, "-b", "swarm/t-2"}, git.calls[idx])
}

func TestAddWorktreeErrorNamesDirAndBranch(t *testing.T) {
	git := &fakeGit{handler: func(args []string) (string, error) {
		return "", errors.New("fatal: not a git repository")
	}}
	coord := NewWithClient(git, nil)

	dir := filepath.Join(t.TempDir(), "t-3")
	err := coord.AddWorktree(context.Background(), dir, "swarm/t-3", "main")
	require.Error(t, err)
	assert.Contains(t, err.Error(), dir)
	assert.Contains(t, err.Error(), `"swarm/t-3"`)
}

func TestRemoveWorktreeRunsAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	git := &fakeGit{}
	coord := NewWithClient(git, nil)

	require.NoError(t, coord.RemoveWorktree(ctx, "/tmp/wt/t-4"))

	idx := git.indexOf("worktree", "remove", "--force", "/tmp/wt/t-4")
	require.GreaterOrEqual(t, idx, 0)
	assert.NoError(t, git.ctxErrs[idx], "worktree release runs detached from the cancelled context")
}
