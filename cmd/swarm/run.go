package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"swarm/internal/agent"
	"swarm/internal/config"
	"swarm/internal/coordinator"
	"swarm/internal/health"
	"swarm/internal/llm"
	"swarm/internal/orchestrator"
	"swarm/internal/task"
	"swarm/internal/tools"
	"swarm/internal/tools/builtin"
)

func newRunCmd() *cobra.Command {
	var (
		priority int
		workers  int
		jsonOut  bool
	)

	cmd := &cobra.Command{
		Use:   "run <task description> [more tasks...]",
		Short: "Run one or more tasks through the agent swarm",
		Long: `Each argument becomes one task: the swarm gives it a branch, runs an agent
on it, and merges the result back through the serialized merge queue.
Conflicting merges spawn high-priority conflict-fix tasks.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if workers > 0 {
				cfg.Orchestrator.Workers = workers
			}

			orch, err := buildOrchestrator(cfg)
			if err != nil {
				return err
			}
			defer orch.Close()

			tasks := make([]*task.Task, 0, len(args))
			for _, desc := range args {
				t := task.New(desc, priority)
				t.Branch = task.BranchName(cfg.Repo.BranchPrefix, t.ID)
				tasks = append(tasks, &t)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %d task(s), %d worker(s), target %s\n",
				bold("swarm:"), len(tasks), cfg.Orchestrator.Workers, cyan(cfg.Repo.TargetBranch))

			if err := orch.RunTasks(cmd.Context(), tasks); err != nil {
				return err
			}

			for _, t := range tasks {
				if err := printTaskResult(cmd, orch, t, jsonOut); err != nil {
					return err
				}
			}
			if pending := orch.Store().Pending(); len(pending) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%s %d follow-up task(s) pending (conflict fixes); run them with another invocation\n",
					yellow("note:"), len(pending))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&priority, "priority", "p", 5, "task priority, 1 (highest) to 10")
	cmd.Flags().IntVar(&workers, "workers", 0, "override the configured worker count")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print handoffs as JSON")
	return cmd
}

func buildOrchestrator(cfg *config.Config) (*orchestrator.Orchestrator, error) {
	coord := coordinator.New(cfg.Repo.Path, newLogger(cfg, "Coordinator"))

	client, err := llm.NewClient(llm.Config{
		BaseURL: cfg.LLM.Endpoint,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Logger:  newLogger(cfg, "LLM"),
	})
	if err != nil {
		return nil, err
	}

	// Every task gets a runner bound to its own worktree: tools and the
	// handoff diff operate on that isolated checkout, never the shared one.
	toolsLogger := newLogger(cfg, "Tools")
	newRunner := func(workdir string) orchestrator.AgentRunner {
		registry := tools.NewRegistry(toolsLogger)
		for _, tool := range builtin.DefaultTools(workdir) {
			if err := registry.Register(tool); err != nil {
				toolsLogger.Error("register %s: %v", tool.Definition().Name, err)
			}
		}
		return agent.NewRunner(agent.Config{
			Workdir:       workdir,
			MaxIterations: cfg.Agent.MaxIterations,
			MaxTokens:     cfg.LLM.MaxTokens,
			Temperature:   cfg.LLM.Temperature,
		}, client, registry, health.NewTracker(), newLogger(cfg, "Agent"))
	}

	return orchestrator.New(orchestrator.Config{
		Workers:          cfg.Orchestrator.Workers,
		TargetBranch:     cfg.Repo.TargetBranch,
		MergeStrategy:    coordinator.Strategy(cfg.Repo.MergeStrategy),
		HandoffRetention: cfg.Orchestrator.HandoffRetention,
		WorktreeDir:      cfg.Repo.WorktreeDir,
	}, coord, newRunner, newLogger(cfg, "Orchestrator"))
}

func printTaskResult(cmd *cobra.Command, orch *orchestrator.Orchestrator, t *task.Task, jsonOut bool) error {
	out := cmd.OutOrStdout()
	handoff, ok := orch.Store().Handoff(t.ID)
	if !ok {
		fmt.Fprintf(out, "%s task %s produced no handoff\n", red("!!"), t.ID)
		return nil
	}

	if jsonOut {
		data, err := json.MarshalIndent(handoff, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	marker := green("ok")
	switch handoff.Status {
	case task.HandoffFailed, task.HandoffBlocked:
		marker = red(string(handoff.Status))
	case task.HandoffPartial:
		marker = yellow("partial")
	}

	fmt.Fprintf(out, "\n%s %s %s\n", marker, bold(t.Description), gray("("+t.Branch+")"))
	fmt.Fprintf(out, "  %s\n", handoff.Summary)
	m := handoff.Metrics
	fmt.Fprintf(out, "  %s\n", gray(fmt.Sprintf(
		"+%d/-%d lines, %d files, %d tool calls, %d tokens, %dms",
		m.LinesAdded, m.LinesRemoved, m.FilesCreated+m.FilesModified,
		m.ToolCallCount, m.TokensUsed, m.DurationMs)))
	return nil
}
