package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"swarm/internal/coordinator"
)

func newMergeCmd() *cobra.Command {
	var (
		target   string
		strategy string
	)

	cmd := &cobra.Command{
		Use:   "merge <source-branch>",
		Short: "Merge a task branch into the target branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if target == "" {
				target = cfg.Repo.TargetBranch
			}
			if strategy == "" {
				strategy = cfg.Repo.MergeStrategy
			}

			coord := coordinator.New(cfg.Repo.Path, newLogger(cfg, "Coordinator"))
			result, err := coord.MergeBranch(cmd.Context(), args[0], target, coordinator.Strategy(strategy))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case result.Success:
				fmt.Fprintf(out, "%s %s\n", green("merged:"), result.Message)
			case result.Conflicted:
				fmt.Fprintf(out, "%s %s\n", red("conflict:"), result.Message)
				fmt.Fprintf(out, "  %s %s\n", gray("files:"), strings.Join(result.ConflictingFiles, ", "))
				fmt.Fprintf(out, "  %s\n", gray("the repository was restored to its pre-merge state"))
			default:
				fmt.Fprintf(out, "%s %s\n", yellow("not merged:"), result.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "target branch (default: configured target)")
	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "merge strategy: fast-forward, rebase or merge-commit")
	return cmd
}
