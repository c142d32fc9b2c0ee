package builtin

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"swarm/internal/agent/ports"
)

type grepSearch struct {
	workdir string
}

// NewGrepSearch returns the grep_search tool. ripgrep is used when available,
// falling back to plain grep.
func NewGrepSearch(workdir string) ports.ToolExecutor {
	return &grepSearch{workdir: workdir}
}

func (t *grepSearch) Execute(ctx context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	pattern, ok := stringArg(call.Arguments, "pattern")
	if !ok || pattern == "" {
		return &ports.ToolResult{CallID: call.ID, Error: fmt.Errorf("missing 'pattern'")}, nil
	}

	target := "."
	if path, ok := stringArg(call.Arguments, "path"); ok && path != "" {
		abs, err := resolvePath(t.workdir, path)
		if err != nil {
			return &ports.ToolResult{CallID: call.ID, Error: err}, nil
		}
		rel, _ := filepath.Rel(t.workdir, abs)
		target = rel
	}

	var out string
	var err error
	if _, lookErr := exec.LookPath("rg"); lookErr == nil {
		out, err = runCommand(ctx, t.workdir, "rg", "--line-number", "--no-heading", "--color=never", "-e", pattern, target)
	} else {
		out, err = runCommand(ctx, t.workdir, "grep", "-rn", "-e", pattern, target)
	}

	if err != nil {
		var exitErr *exec.ExitError
		// Exit code 1 means no matches for both rg and grep.
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return &ports.ToolResult{CallID: call.ID, Content: "no matches found"}, nil
		}
		return &ports.ToolResult{CallID: call.ID, Error: fmt.Errorf("search failed: %w: %s", err, strings.TrimSpace(out))}, nil
	}

	if strings.TrimSpace(out) == "" {
		out = "no matches found"
	}
	return &ports.ToolResult{CallID: call.ID, Content: out}, nil
}

func (t *grepSearch) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        "grep_search",
		Description: "Search file contents for a regular expression",
		Parameters: ports.ParameterSchema{
			Type: "object",
			Properties: map[string]ports.Property{
				"pattern": {Type: "string", Description: "Regular expression to search for"},
				"path":    {Type: "string", Description: "File or directory to search (default: whole working directory)"},
			},
			Required: []string{"pattern"},
		},
	}
}

func (t *grepSearch) Metadata() ports.ToolMetadata {
	return ports.ToolMetadata{Name: "grep_search", Version: "1.0.0", Category: "search"}
}

type listFiles struct {
	workdir string
}

// NewListFiles returns the list_files tool.
func NewListFiles(workdir string) ports.ToolExecutor {
	return &listFiles{workdir: workdir}
}

func (t *listFiles) Execute(_ context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	root := t.workdir
	if path, ok := stringArg(call.Arguments, "path"); ok && path != "" {
		abs, err := resolvePath(t.workdir, path)
		if err != nil {
			return &ports.ToolResult{CallID: call.ID, Error: err}, nil
		}
		root = abs
	}

	maxDepth := 0
	if depth, ok := numberArg(call.Arguments, "max_depth"); ok && depth > 0 {
		maxDepth = int(depth)
	}

	var entries []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if d.IsDir() && (d.Name() == ".git" || d.Name() == "node_modules") {
			return filepath.SkipDir
		}
		depth := strings.Count(rel, string(filepath.Separator)) + 1
		if maxDepth > 0 && depth > maxDepth {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			entries = append(entries, rel+"/")
		} else {
			entries = append(entries, rel)
		}
		return nil
	})
	if err != nil {
		return &ports.ToolResult{CallID: call.ID, Error: err}, nil
	}

	sort.Strings(entries)
	if len(entries) == 0 {
		return &ports.ToolResult{CallID: call.ID, Content: "(empty directory)"}, nil
	}
	return &ports.ToolResult{
		CallID:   call.ID,
		Content:  truncateOutput(strings.Join(entries, "\n")),
		Metadata: map[string]any{"count": len(entries)},
	}, nil
}

func (t *listFiles) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        "list_files",
		Description: "List files and directories under a path",
		Parameters: ports.ParameterSchema{
			Type: "object",
			Properties: map[string]ports.Property{
				"path":      {Type: "string", Description: "Directory to list (default: working directory)"},
				"max_depth": {Type: "integer", Description: "Limit listing depth (0 = unlimited)"},
			},
		},
	}
}

func (t *listFiles) Metadata() ports.ToolMetadata {
	return ports.ToolMetadata{Name: "list_files", Version: "1.0.0", Category: "file_operations"}
}
