package coordinator

// Strategy is the policy used to integrate a source branch into a target.
type Strategy string

const (
	StrategyFastForward Strategy = "fast-forward"
	StrategyRebase      Strategy = "rebase"
	StrategyMergeCommit Strategy = "merge-commit"
)

// DefaultStrategy is used when a merge request does not name one.
const DefaultStrategy = StrategyMergeCommit

// Valid returns true if the strategy is a known value.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyFastForward, StrategyRebase, StrategyMergeCommit:
		return true
	default:
		return false
	}
}

// MergeResult reports one integration attempt. Conflicted implies !Success
// and that the repository was restored to its pre-attempt state. A
// MergeResult is a transient value, never persisted as state.
type MergeResult struct {
	Success          bool     `json:"success"`
	Conflicted       bool     `json:"conflicted,omitempty"`
	Message          string   `json:"message"`
	ConflictingFiles []string `json:"conflicting_files,omitempty"`
	Source           string   `json:"source"`
	Target           string   `json:"target"`
	Strategy         Strategy `json:"strategy"`
}

// RebaseResult reports one rebase attempt of a single branch.
type RebaseResult struct {
	Success          bool     `json:"success"`
	Conflicted       bool     `json:"conflicted,omitempty"`
	Message          string   `json:"message"`
	ConflictingFiles []string `json:"conflicting_files,omitempty"`
	Branch           string   `json:"branch"`
	Onto             string   `json:"onto"`
}

// DiffStat is a read-only projection of working-tree changes.
type DiffStat struct {
	FilesChanged int `json:"files_changed"`
	LinesAdded   int `json:"lines_added"`
	LinesRemoved int `json:"lines_removed"`
}

// CommitInfo is a read-only projection of one commit.
type CommitInfo struct {
	Hash    string `json:"hash"`
	Author  string `json:"author"`
	Date    int64  `json:"date"` // unix milliseconds
	Message string `json:"message"`
}
