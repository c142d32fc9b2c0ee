// Package builtin provides the file, shell and git tools agents use to do
// their work. All tools operate relative to a fixed working directory and
// refuse paths escaping it.
package builtin

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	// maxToolOutput caps what a single tool feeds back into the conversation.
	maxToolOutput = 64 * 1024

	truncationMarker = "\n... [output truncated]"
)

// resolvePath joins a (possibly relative) tool path against the working
// directory and rejects anything that escapes it.
func resolvePath(workdir, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is empty")
	}
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(workdir, abs)
	}
	abs = filepath.Clean(abs)

	rel, err := filepath.Rel(workdir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside the working directory", path)
	}
	return abs, nil
}

// runCommand executes a subprocess in the working directory with a hardened
// environment and returns combined output, truncated to the tool output cap.
func runCommand(ctx context.Context, workdir string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = workdir
	cmd.Env = append(os.Environ(),
		"GIT_PAGER=cat",
		"GIT_TERMINAL_PROMPT=0",
		"NO_COLOR=1",
		"PAGER=cat",
	)

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	return truncateOutput(buf.String()), err
}

// truncateOutput enforces the per-tool output cap, keeping the head of the
// output since errors and summaries tend to appear first.
func truncateOutput(s string) string {
	if len(s) <= maxToolOutput {
		return s
	}
	return s[:maxToolOutput] + truncationMarker
}

func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key].(string)
	return v, ok
}

// numberArg reads a numeric argument; JSON numbers decode as float64.
func numberArg(args map[string]any, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
