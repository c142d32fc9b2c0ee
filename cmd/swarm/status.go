package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"swarm/internal/coordinator"
)

func newStatusCmd() *cobra.Command {
	var commits int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the repository state the swarm sees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			coord := coordinator.New(cfg.Repo.Path, newLogger(cfg, "Coordinator"))
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			branch, err := coord.CurrentBranch(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", bold("branch:"), cyan(branch))

			dirty, err := coord.HasUncommittedChanges(ctx)
			if err != nil {
				return err
			}
			if dirty {
				stat, err := coord.GetDiffStat(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s %s\n", bold("tree:"), yellow(fmt.Sprintf(
					"dirty: %d files, +%d/-%d lines", stat.FilesChanged, stat.LinesAdded, stat.LinesRemoved)))
			} else {
				fmt.Fprintf(out, "%s %s\n", bold("tree:"), green("clean"))
			}

			recent, err := coord.GetRecentCommits(ctx, commits)
			if err != nil {
				return err
			}
			if len(recent) > 0 {
				fmt.Fprintf(out, "%s\n", bold("recent commits:"))
				for _, c := range recent {
					when := time.UnixMilli(c.Date).Format("2006-01-02 15:04")
					fmt.Fprintf(out, "  %s %s %s %s\n",
						yellow(shortHash(c.Hash)), gray(when), c.Message, gray("("+c.Author+")"))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&commits, "commits", "n", 10, "number of recent commits to show")
	return cmd
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
