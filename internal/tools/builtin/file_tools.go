package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"swarm/internal/agent/ports"
	"swarm/internal/diff"
)

type readFile struct {
	workdir string
}

// NewReadFile returns the read_file tool, confined to workdir.
func NewReadFile(workdir string) ports.ToolExecutor {
	return &readFile{workdir: workdir}
}

func (t *readFile) Execute(_ context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	path, ok := stringArg(call.Arguments, "path")
	if !ok {
		return &ports.ToolResult{CallID: call.ID, Error: fmt.Errorf("missing 'path'")}, nil
	}
	abs, err := resolvePath(t.workdir, path)
	if err != nil {
		return &ports.ToolResult{CallID: call.ID, Error: err}, nil
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return &ports.ToolResult{CallID: call.ID, Error: err}, nil
	}
	return &ports.ToolResult{
		CallID:   call.ID,
		Content:  truncateOutput(string(content)),
		Metadata: map[string]any{"path": path, "bytes": len(content)},
	}, nil
}

func (t *readFile) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        "read_file",
		Description: "Read the contents of a file",
		Parameters: ports.ParameterSchema{
			Type: "object",
			Properties: map[string]ports.Property{
				"path": {Type: "string", Description: "File path, relative to the working directory"},
			},
			Required: []string{"path"},
		},
	}
}

func (t *readFile) Metadata() ports.ToolMetadata {
	return ports.ToolMetadata{Name: "read_file", Version: "1.0.0", Category: "file_operations"}
}

type writeFile struct {
	workdir string
}

// NewWriteFile returns the write_file tool. Parent directories are created as
// needed; existing files are overwritten.
func NewWriteFile(workdir string) ports.ToolExecutor {
	return &writeFile{workdir: workdir}
}

func (t *writeFile) Execute(_ context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	path, ok := stringArg(call.Arguments, "path")
	if !ok {
		return &ports.ToolResult{CallID: call.ID, Error: fmt.Errorf("missing 'path'")}, nil
	}
	content, ok := stringArg(call.Arguments, "content")
	if !ok {
		return &ports.ToolResult{CallID: call.ID, Error: fmt.Errorf("missing 'content'")}, nil
	}

	abs, err := resolvePath(t.workdir, path)
	if err != nil {
		return &ports.ToolResult{CallID: call.ID, Error: err}, nil
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return &ports.ToolResult{CallID: call.ID, Error: err}, nil
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		return &ports.ToolResult{CallID: call.ID, Error: err}, nil
	}

	return &ports.ToolResult{
		CallID:   call.ID,
		Content:  fmt.Sprintf("wrote %d bytes to %s", len(content), path),
		Metadata: map[string]any{"path": path, "bytes": len(content)},
	}, nil
}

func (t *writeFile) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        "write_file",
		Description: "Write content to a file, creating it and any parent directories if needed",
		Parameters: ports.ParameterSchema{
			Type: "object",
			Properties: map[string]ports.Property{
				"path":    {Type: "string", Description: "File path, relative to the working directory"},
				"content": {Type: "string", Description: "Full file content to write"},
			},
			Required: []string{"path", "content"},
		},
	}
}

func (t *writeFile) Metadata() ports.ToolMetadata {
	return ports.ToolMetadata{Name: "write_file", Version: "1.0.0", Category: "file_operations"}
}

type editFile struct {
	workdir string
	differ  *diff.Generator
}

// NewEditFile returns the edit_file tool. old_text must match exactly once in
// the file; the result carries a unified diff of the change.
func NewEditFile(workdir string) ports.ToolExecutor {
	return &editFile{workdir: workdir, differ: diff.NewGenerator(false)}
}

func (t *editFile) Execute(_ context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	path, ok := stringArg(call.Arguments, "path")
	if !ok {
		return &ports.ToolResult{CallID: call.ID, Error: fmt.Errorf("missing 'path'")}, nil
	}
	oldText, ok := stringArg(call.Arguments, "old_text")
	if !ok {
		return &ports.ToolResult{CallID: call.ID, Error: fmt.Errorf("missing 'old_text'")}, nil
	}
	newText, ok := stringArg(call.Arguments, "new_text")
	if !ok {
		return &ports.ToolResult{CallID: call.ID, Error: fmt.Errorf("missing 'new_text'")}, nil
	}
	if oldText == "" {
		return &ports.ToolResult{CallID: call.ID, Error: fmt.Errorf("'old_text' must not be empty")}, nil
	}

	abs, err := resolvePath(t.workdir, path)
	if err != nil {
		return &ports.ToolResult{CallID: call.ID, Error: err}, nil
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return &ports.ToolResult{CallID: call.ID, Error: err}, nil
	}
	content := string(raw)

	switch count := strings.Count(content, oldText); {
	case count == 0:
		return &ports.ToolResult{CallID: call.ID, Error: fmt.Errorf("old_text not found in %s", path)}, nil
	case count > 1:
		return &ports.ToolResult{
			CallID: call.ID,
			Error:  fmt.Errorf("old_text matches %d locations in %s, it must be unique", count, path),
		}, nil
	}

	updated := strings.Replace(content, oldText, newText, 1)
	if err := os.WriteFile(abs, []byte(updated), 0o644); err != nil {
		return &ports.ToolResult{CallID: call.ID, Error: err}, nil
	}

	change := t.differ.Unified(content, updated, path)
	return &ports.ToolResult{
		CallID:  call.ID,
		Content: fmt.Sprintf("edited %s (%s)\n%s", path, change.Summary(), truncateOutput(change.Unified)),
		Metadata: map[string]any{
			"path":          path,
			"lines_added":   change.AddedLines,
			"lines_removed": change.RemovedLines,
		},
	}, nil
}

func (t *editFile) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        "edit_file",
		Description: "Replace a unique occurrence of old_text with new_text in a file",
		Parameters: ports.ParameterSchema{
			Type: "object",
			Properties: map[string]ports.Property{
				"path":     {Type: "string", Description: "File path, relative to the working directory"},
				"old_text": {Type: "string", Description: "Exact text to replace; must occur exactly once"},
				"new_text": {Type: "string", Description: "Replacement text"},
			},
			Required: []string{"path", "old_text", "new_text"},
		},
	}
}

func (t *editFile) Metadata() ports.ToolMetadata {
	return ports.ToolMetadata{Name: "edit_file", Version: "1.0.0", Category: "file_operations"}
}
