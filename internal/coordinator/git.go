package coordinator

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// GitClient runs one git subcommand against a fixed repository checkout.
// The coordinator's conflict and rollback logic is written against this
// interface so it can be unit-tested with an in-memory fake.
type GitClient interface {
	Run(ctx context.Context, args ...string) (string, error)
}

type execClient struct {
	dir string
}

// NewExecClient returns a GitClient backed by the git CLI in dir.
func NewExecClient(dir string) GitClient {
	return &execClient{dir: strings.TrimSpace(dir)}
}

func (c *execClient) Run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.dir
	cmd.Env = mergeEnv(os.Environ(), map[string]string{
		"GIT_PAGER":           "cat",
		"GIT_TERMINAL_PROMPT": "0",
		"GIT_SSH_COMMAND":     "ssh -oBatchMode=yes",
		"NO_COLOR":            "1",
	})

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
		}
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, detail)
	}
	return string(out), nil
}

func mergeEnv(base []string, overrides map[string]string) []string {
	env := make([]string, 0, len(base)+len(overrides))
	for _, entry := range base {
		key := entry
		if idx := strings.Index(entry, "="); idx != -1 {
			key = entry[:idx]
		}
		if _, ok := overrides[key]; ok {
			continue
		}
		env = append(env, entry)
	}
	for key, value := range overrides {
		env = append(env, key+"="+value)
	}
	return env
}
