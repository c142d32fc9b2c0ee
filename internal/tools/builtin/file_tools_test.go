package builtin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swarm/internal/agent/ports"
)

func call(name string, args map[string]any) ports.ToolCall {
	return ports.ToolCall{ID: "c1", Name: name, Arguments: args}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hello world"), 0o644))

	tool := NewReadFile(dir)
	res, err := tool.Execute(context.Background(), call("read_file", map[string]any{"path": "hello.txt"}))
	require.NoError(t, err)
	require.NoError(t, res.Error)
	assert.Equal(t, "hello world", res.Content)
}

func TestReadFileMissing(t *testing.T) {
	tool := NewReadFile(t.TempDir())
	res, err := tool.Execute(context.Background(), call("read_file", map[string]any{"path": "nope.txt"}))
	require.NoError(t, err, "tool failures live in the result, not the error return")
	assert.Error(t, res.Error)
}

func TestReadFileEscapesWorkdir(t *testing.T) {
	tool := NewReadFile(t.TempDir())
	res, err := tool.Execute(context.Background(), call("read_file", map[string]any{"path": "../../etc/passwd"}))
	require.NoError(t, err)
	require.Error(t, res.Error)
	assert.Contains(t, res.Error.Error(), "outside the working directory")
}

func TestWriteFileCreatesParents(t *testing.T) {
	dir := t.TempDir()
	tool := NewWriteFile(dir)

	res, err := tool.Execute(context.Background(), call("write_file", map[string]any{
		"path":    "nested/deep/out.txt",
		"content": "data",
	}))
	require.NoError(t, err)
	require.NoError(t, res.Error)

	got, err := os.ReadFile(filepath.Join(dir, "nested", "deep", "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))
}

func TestEditFileReplacesUniqueMatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc main() {}\n"), 0o644))

	tool := NewEditFile(dir)
	res, err := tool.Execute(context.Background(), call("edit_file", map[string]any{
		"path":     "main.go",
		"old_text": "func main() {}",
		"new_text": "func main() { run() }",
	}))
	require.NoError(t, err)
	require.NoError(t, res.Error)
	assert.Contains(t, res.Content, "edited main.go")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(got), "run()")
}

func TestEditFileOldTextNotFound(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o644))

	tool := NewEditFile(dir)
	res, err := tool.Execute(context.Background(), call("edit_file", map[string]any{
		"path":     "a.txt",
		"old_text": "beta",
		"new_text": "gamma",
	}))
	require.NoError(t, err)
	require.Error(t, res.Error)
	assert.Contains(t, res.Error.Error(), "not found")
}

func TestEditFileAmbiguousMatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x\nx\n"), 0o644))

	tool := NewEditFile(dir)
	res, err := tool.Execute(context.Background(), call("edit_file", map[string]any{
		"path":     "a.txt",
		"old_text": "x",
		"new_text": "y",
	}))
	require.NoError(t, err)
	require.Error(t, res.Error)
	assert.Contains(t, res.Error.Error(), "must be unique")

	got, readErr := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, readErr)
	assert.Equal(t, "x\nx\n", string(got), "ambiguous edits leave the file untouched")
}

func TestDefaultToolsRoster(t *testing.T) {
	tools := DefaultTools(t.TempDir())
	names := make(map[string]bool, len(tools))
	for _, tool := range tools {
		names[tool.Definition().Name] = true
	}
	for _, want := range []string{
		"read_file", "write_file", "edit_file", "bash_exec",
		"grep_search", "list_files", "git_diff", "git_commit",
	} {
		assert.True(t, names[want], "missing tool %s", want)
	}
	assert.Len(t, tools, 8)
}
