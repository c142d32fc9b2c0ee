package builtin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFilesDepth(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pkg", "inner"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "top.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "mid.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "inner", "deep.txt"), nil, 0o644))

	tool := NewListFiles(dir)

	res, err := tool.Execute(context.Background(), call("list_files", map[string]any{"max_depth": 1.0}))
	require.NoError(t, err)
	require.NoError(t, res.Error)
	assert.Contains(t, res.Content, "top.txt")
	assert.Contains(t, res.Content, "pkg/")
	assert.NotContains(t, res.Content, "mid.txt")

	res, err = tool.Execute(context.Background(), call("list_files", map[string]any{}))
	require.NoError(t, err)
	require.NoError(t, res.Error)
	assert.Contains(t, res.Content, filepath.Join("pkg", "inner", "deep.txt"))
}

func TestListFilesSkipsGitDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git", "objects"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "HEAD"), []byte("ref"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), nil, 0o644))

	tool := NewListFiles(dir)
	res, err := tool.Execute(context.Background(), call("list_files", map[string]any{}))
	require.NoError(t, err)
	require.NoError(t, res.Error)
	assert.Contains(t, res.Content, "main.go")
	assert.NotContains(t, res.Content, "HEAD")
}

func TestGrepSearchFindsMatches(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package main\nfunc target() {}\n"), 0o644))

	tool := NewGrepSearch(dir)
	res, err := tool.Execute(context.Background(), call("grep_search", map[string]any{"pattern": "target"}))
	require.NoError(t, err)
	require.NoError(t, res.Error)
	assert.Contains(t, res.Content, "a.go")
	assert.Contains(t, res.Content, "func target()")
}

func TestGrepSearchNoMatches(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package main\n"), 0o644))

	tool := NewGrepSearch(dir)
	res, err := tool.Execute(context.Background(), call("grep_search", map[string]any{"pattern": "nosuchsymbol"}))
	require.NoError(t, err)
	require.NoError(t, res.Error, "zero matches is a normal outcome")
	assert.Equal(t, "no matches found", res.Content)
}
