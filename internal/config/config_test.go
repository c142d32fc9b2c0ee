package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Repo.Path)
	assert.Equal(t, "swarm/", cfg.Repo.BranchPrefix)
	assert.Equal(t, "main", cfg.Repo.TargetBranch)
	assert.Equal(t, "merge-commit", cfg.Repo.MergeStrategy)
	assert.Equal(t, 4096, cfg.LLM.MaxTokens)
	assert.Equal(t, 20, cfg.Agent.MaxIterations)
	assert.Equal(t, 4, cfg.Orchestrator.Workers)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SWARM_LLM_MODEL", "gpt-test")
	t.Setenv("SWARM_ORCHESTRATOR_WORKERS", "8")
	t.Setenv("SWARM_REPO_TARGET_BRANCH", "develop")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gpt-test", cfg.LLM.Model)
	assert.Equal(t, 8, cfg.Orchestrator.Workers)
	assert.Equal(t, "develop", cfg.Repo.TargetBranch)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "swarm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
repo:
  target_branch: trunk
  merge_strategy: rebase
llm:
  model: local-model
  endpoint: http://localhost:8080/v1
agent:
  max_iterations: 5
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "trunk", cfg.Repo.TargetBranch)
	assert.Equal(t, "rebase", cfg.Repo.MergeStrategy)
	assert.Equal(t, "local-model", cfg.LLM.Model)
	assert.Equal(t, 5, cfg.Agent.MaxIterations)
	assert.Equal(t, 4, cfg.Orchestrator.Workers, "unset fields keep defaults")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Error(t, cfg.Validate(), "model is required")

	cfg.LLM.Model = "gpt-test"
	assert.NoError(t, cfg.Validate())

	cfg.Repo.MergeStrategy = "octopus"
	assert.Error(t, cfg.Validate())
}
