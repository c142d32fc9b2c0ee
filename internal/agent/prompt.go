package agent

import (
	"fmt"
	"strings"

	"swarm/internal/task"
)

const defaultSystemPrompt = `You are an autonomous coding agent working on one task in a shared git repository.
Use the available tools to inspect and modify the code. Commit your work with git_commit.
When the task is done, reply with a plain-text summary of what you changed and why.`

// renderTask produces the opening user message for a task.
func renderTask(t *task.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n", t.Description)
	if len(t.Scope) > 0 {
		b.WriteString("\nScope (only touch these areas):\n")
		for _, s := range t.Scope {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	if t.Acceptance != "" {
		fmt.Fprintf(&b, "\nAcceptance criteria:\n%s\n", t.Acceptance)
	}
	if t.Branch != "" {
		fmt.Fprintf(&b, "\nYou are working on branch %s.\n", t.Branch)
	}
	if t.ConflictSourceBranch != "" {
		fmt.Fprintf(&b, "\nThis task resolves merge conflicts left by branch %s. Inspect the conflict markers, resolve them, and commit the resolution.\n", t.ConflictSourceBranch)
	}
	return b.String()
}
