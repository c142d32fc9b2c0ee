// Package agent runs the tool-calling loop for one worker: it feeds a task to
// the model, dispatches the tool calls the model makes, and produces exactly
// one handoff per task no matter how the run ends.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"swarm/internal/agent/ports"
	"swarm/internal/coordinator"
	"swarm/internal/health"
	"swarm/internal/logging"
	"swarm/internal/task"
	tokenutil "swarm/internal/token"
	"swarm/internal/tools"
)

const (
	defaultMaxIterations = 20
	defaultMaxTokens     = 4096
)

// Config tunes one runner.
type Config struct {
	Workdir       string
	MaxIterations int
	MaxTokens     int
	Temperature   float64
	SystemPrompt  string
}

// Runner drives the model/tool loop for tasks in one working directory.
type Runner struct {
	cfg      Config
	client   ports.LLMClient
	registry *tools.Registry
	git      coordinator.GitClient
	health   *health.Tracker
	logger   logging.Logger
}

// NewRunner creates a runner. tracker may be nil when no health reporting is
// wanted.
func NewRunner(cfg Config, client ports.LLMClient, registry *tools.Registry, tracker *health.Tracker, logger logging.Logger) *Runner {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaultMaxIterations
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = defaultSystemPrompt
	}
	return &Runner{
		cfg:      cfg,
		client:   client,
		registry: registry,
		git:      coordinator.NewExecClient(cfg.Workdir),
		health:   tracker,
		logger:   logging.OrNop(logger),
	}
}

// Run executes the task to completion and returns its handoff. It never
// returns an error and never panics: every failure mode, including a panic in
// the loop itself, is converted into a failed handoff so the scheduler always
// receives exactly one terminal report.
func (r *Runner) Run(ctx context.Context, t *task.Task) (handoff *task.Handoff) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("task %s: agent panicked: %v", t.ID, rec)
			handoff = task.NewFailureHandoff(t.ID, fmt.Sprintf("agent panicked: %v", rec))
			handoff.Metrics.DurationMs = time.Since(start).Milliseconds()
		}
	}()

	if r.health != nil {
		r.health.SetTask(t.ID)
		defer r.health.ClearTask()
	}

	startCommit := r.startCommit(ctx)
	r.logger.Info("task %s: starting at commit %s", t.ID, shortHash(startCommit))

	messages := []ports.Message{
		{Role: "system", Content: r.cfg.SystemPrompt},
		{Role: "user", Content: renderTask(t)},
	}
	toolDefs := r.registry.List()

	var (
		iterations int
		toolCalls  int
		tokensUsed int
		lastText   string
		finished   bool
		stalled    bool
	)

	for iterations < r.cfg.MaxIterations {
		if r.health != nil {
			r.health.Ping()
		}

		req := ports.CompletionRequest{
			Messages:    messages,
			Tools:       toolDefs,
			Temperature: r.cfg.Temperature,
			MaxTokens:   r.cfg.MaxTokens,
			Metadata:    map[string]any{"task_id": t.ID},
		}
		resp, err := r.client.Complete(ctx, req)
		if err != nil {
			r.logger.Error("task %s: llm request failed: %v", t.ID, err)
			h := task.NewFailureHandoff(t.ID, fmt.Sprintf("llm request failed after %d iterations: %v", iterations, err))
			h.Metrics.TokensUsed = tokensUsed
			h.Metrics.ToolCallCount = toolCalls
			h.Metrics.DurationMs = time.Since(start).Milliseconds()
			return h
		}
		iterations++

		if resp.Usage.TotalTokens > 0 {
			tokensUsed += resp.Usage.TotalTokens
		} else {
			tokensUsed += tokenutil.CountExchange(req, resp)
		}

		if len(resp.ToolCalls) == 0 {
			lastText = strings.TrimSpace(resp.Content)
			if lastText == "" {
				stalled = true
				r.logger.Warn("task %s: model returned neither text nor tool calls, stopping", t.ID)
			} else {
				finished = true
			}
			break
		}

		messages = append(messages, ports.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for _, call := range resp.ToolCalls {
			call.TaskID = t.ID
			result := r.registry.Dispatch(ctx, call)
			toolCalls++
			r.logger.Debug("task %s: %s -> %d bytes", t.ID, call.Name, len(result.Text()))
			messages = append(messages, ports.Message{
				Role:       "tool",
				Content:    result.Text(),
				ToolCallID: call.ID,
			})
		}
	}

	diff, files, changes := r.collectChanges(ctx, startCommit)

	// Every loop exit hands off as complete: the work done so far sits on the
	// task branch either way, and the summary records how the loop ended.
	summary := lastText
	switch {
	case stalled:
		summary = fmt.Sprintf("stopped after %d iterations: model produced an empty response", iterations)
	case !finished:
		summary = fmt.Sprintf("reached the iteration limit (%d); work so far is on the task branch", r.cfg.MaxIterations)
	case summary == "":
		summary = fmt.Sprintf("completed %d iterations, %d tool calls", iterations, toolCalls)
	}

	h := &task.Handoff{
		TaskID:       t.ID,
		Status:       task.HandoffComplete,
		Summary:      summary,
		Diff:         diff,
		FilesChanged: files,
		Metrics: task.Metrics{
			LinesAdded:    changes.LinesAdded,
			LinesRemoved:  changes.LinesRemoved,
			FilesCreated:  changes.FilesCreated,
			FilesModified: changes.FilesModified,
			TokensUsed:    tokensUsed,
			ToolCallCount: toolCalls,
			DurationMs:    time.Since(start).Milliseconds(),
		},
		CreatedAt: time.Now(),
	}
	r.logger.Info("task %s: %s after %d iterations, %d tool calls, %d tokens",
		t.ID, h.Status, iterations, toolCalls, tokensUsed)
	return h
}

// startCommit records where the worker began so the handoff diff covers the
// whole task, including commits the agent made along the way. Empty on a
// repository with no commits yet.
func (r *Runner) startCommit(ctx context.Context) string {
	out, err := r.git.Run(ctx, "rev-parse", "HEAD")
	if err != nil {
		r.logger.Warn("resolve start commit: %v", err)
		return ""
	}
	return strings.TrimSpace(out)
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	if hash == "" {
		return "(none)"
	}
	return hash
}
