package builtin

import "swarm/internal/agent/ports"

// DefaultTools returns the standard tool set for one agent working in
// workdir: file operations, shell execution, search and git.
func DefaultTools(workdir string) []ports.ToolExecutor {
	return []ports.ToolExecutor{
		NewReadFile(workdir),
		NewWriteFile(workdir),
		NewEditFile(workdir),
		NewBashExec(workdir),
		NewGrepSearch(workdir),
		NewListFiles(workdir),
		NewGitDiff(workdir),
		NewGitCommit(workdir),
	}
}
