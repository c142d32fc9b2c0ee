package builtin

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"swarm/internal/agent/ports"
)

const defaultBashTimeout = 60 * time.Second

type bashExec struct {
	workdir string
}

// NewBashExec returns the bash_exec tool. Commands run in the working
// directory with a per-call timeout and a hard output cap.
func NewBashExec(workdir string) ports.ToolExecutor {
	return &bashExec{workdir: workdir}
}

func (t *bashExec) Execute(ctx context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	command, ok := stringArg(call.Arguments, "command")
	if !ok || command == "" {
		return &ports.ToolResult{CallID: call.ID, Error: fmt.Errorf("missing 'command'")}, nil
	}

	timeout := defaultBashTimeout
	if secs, ok := numberArg(call.Arguments, "timeout_seconds"); ok && secs > 0 {
		timeout = time.Duration(secs * float64(time.Second))
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	out, err := runCommand(ctx, t.workdir, "bash", "-c", command)
	elapsed := time.Since(start)

	if ctx.Err() == context.DeadlineExceeded {
		return &ports.ToolResult{
			CallID: call.ID,
			Error:  fmt.Errorf("command timed out after %s", timeout),
			Metadata: map[string]any{
				"command":     command,
				"duration_ms": elapsed.Milliseconds(),
			},
		}, nil
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return &ports.ToolResult{CallID: call.ID, Error: err}, nil
		}
	}

	content := out
	if exitCode != 0 {
		content = fmt.Sprintf("exit code %d\n%s", exitCode, out)
	}
	if content == "" {
		content = "(no output)"
	}

	return &ports.ToolResult{
		CallID:  call.ID,
		Content: content,
		Metadata: map[string]any{
			"command":     command,
			"exit_code":   exitCode,
			"duration_ms": elapsed.Milliseconds(),
		},
	}, nil
}

func (t *bashExec) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        "bash_exec",
		Description: "Run a bash command in the working directory and return its output",
		Parameters: ports.ParameterSchema{
			Type: "object",
			Properties: map[string]ports.Property{
				"command":         {Type: "string", Description: "Bash command to execute"},
				"timeout_seconds": {Type: "number", Description: "Timeout in seconds (default 60)"},
			},
			Required: []string{"command"},
		},
	}
}

func (t *bashExec) Metadata() ports.ToolMetadata {
	return ports.ToolMetadata{
		Name: "bash_exec", Version: "1.0.0", Category: "execution", Dangerous: true,
	}
}
