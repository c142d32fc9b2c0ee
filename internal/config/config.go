// Package config loads swarm configuration from file, environment and
// defaults, in that order of increasing precedence for the environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"swarm/internal/coordinator"
	"swarm/internal/task"
)

// Config is the full runtime configuration.
type Config struct {
	Repo         RepoConfig         `mapstructure:"repo"`
	LLM          LLMConfig          `mapstructure:"llm"`
	Agent        AgentConfig        `mapstructure:"agent"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
	Log          LogConfig          `mapstructure:"log"`
}

type RepoConfig struct {
	Path          string `mapstructure:"path"`
	BranchPrefix  string `mapstructure:"branch_prefix"`
	TargetBranch  string `mapstructure:"target_branch"`
	MergeStrategy string `mapstructure:"merge_strategy"`
	WorktreeDir   string `mapstructure:"worktree_dir"`
}

type LLMConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type AgentConfig struct {
	MaxIterations int `mapstructure:"max_iterations"`
}

type OrchestratorConfig struct {
	Workers          int `mapstructure:"workers"`
	HandoffRetention int `mapstructure:"handoff_retention"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration. path may be empty, in which case swarm.yaml is
// searched in the working directory and ~/.swarm; a missing file is fine and
// leaves defaults plus SWARM_* environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SWARM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("swarm")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.swarm")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("repo.path", ".")
	v.SetDefault("repo.branch_prefix", task.DefaultBranchPrefix)
	v.SetDefault("repo.target_branch", "main")
	v.SetDefault("repo.merge_strategy", string(coordinator.DefaultStrategy))
	v.SetDefault("llm.endpoint", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("agent.max_iterations", 20)
	v.SetDefault("orchestrator.workers", 4)
	v.SetDefault("orchestrator.handoff_retention", 512)
	v.SetDefault("log.level", "info")
}

// Validate checks the fields required to actually run agents.
func (c *Config) Validate() error {
	if c.LLM.Model == "" {
		return fmt.Errorf("config: llm.model is required")
	}
	if c.LLM.Endpoint == "" {
		return fmt.Errorf("config: llm.endpoint is required")
	}
	if !coordinator.Strategy(c.Repo.MergeStrategy).Valid() {
		return fmt.Errorf("config: unknown merge strategy %q", c.Repo.MergeStrategy)
	}
	return nil
}
