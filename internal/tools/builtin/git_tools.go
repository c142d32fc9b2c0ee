package builtin

import (
	"context"
	"fmt"
	"strings"

	"swarm/internal/agent/ports"
)

type gitDiff struct {
	workdir string
}

// NewGitDiff returns the git_diff tool, showing uncommitted changes against
// HEAD.
func NewGitDiff(workdir string) ports.ToolExecutor {
	return &gitDiff{workdir: workdir}
}

func (t *gitDiff) Execute(ctx context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	args := []string{"diff", "HEAD"}
	if path, ok := stringArg(call.Arguments, "path"); ok && path != "" {
		args = append(args, "--", path)
	}

	out, err := runCommand(ctx, t.workdir, "git", args...)
	if err != nil {
		return &ports.ToolResult{CallID: call.ID, Error: fmt.Errorf("git diff: %w: %s", err, strings.TrimSpace(out))}, nil
	}
	if strings.TrimSpace(out) == "" {
		out = "no uncommitted changes"
	}
	return &ports.ToolResult{CallID: call.ID, Content: out}, nil
}

func (t *gitDiff) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        "git_diff",
		Description: "Show uncommitted changes in the working tree",
		Parameters: ports.ParameterSchema{
			Type: "object",
			Properties: map[string]ports.Property{
				"path": {Type: "string", Description: "Limit the diff to one path"},
			},
		},
	}
}

func (t *gitDiff) Metadata() ports.ToolMetadata {
	return ports.ToolMetadata{Name: "git_diff", Version: "1.0.0", Category: "git"}
}

type gitCommit struct {
	workdir string
}

// NewGitCommit returns the git_commit tool: stage everything, commit with the
// given message.
func NewGitCommit(workdir string) ports.ToolExecutor {
	return &gitCommit{workdir: workdir}
}

func (t *gitCommit) Execute(ctx context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	message, ok := stringArg(call.Arguments, "message")
	if !ok || strings.TrimSpace(message) == "" {
		return &ports.ToolResult{CallID: call.ID, Error: fmt.Errorf("missing 'message'")}, nil
	}

	if out, err := runCommand(ctx, t.workdir, "git", "add", "-A"); err != nil {
		return &ports.ToolResult{CallID: call.ID, Error: fmt.Errorf("git add: %w: %s", err, strings.TrimSpace(out))}, nil
	}

	out, err := runCommand(ctx, t.workdir, "git", "commit", "-m", message)
	if err != nil {
		if strings.Contains(out, "nothing to commit") {
			return &ports.ToolResult{CallID: call.ID, Error: fmt.Errorf("nothing to commit")}, nil
		}
		return &ports.ToolResult{CallID: call.ID, Error: fmt.Errorf("git commit: %w: %s", err, strings.TrimSpace(out))}, nil
	}

	return &ports.ToolResult{
		CallID:   call.ID,
		Content:  strings.TrimSpace(out),
		Metadata: map[string]any{"message": message},
	}, nil
}

func (t *gitCommit) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        "git_commit",
		Description: "Stage all changes and create a commit",
		Parameters: ports.ParameterSchema{
			Type: "object",
			Properties: map[string]ports.Property{
				"message": {Type: "string", Description: "Commit message"},
			},
			Required: []string{"message"},
		},
	}
}

func (t *gitCommit) Metadata() ports.ToolMetadata {
	return ports.ToolMetadata{Name: "git_commit", Version: "1.0.0", Category: "git"}
}
