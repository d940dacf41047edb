package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the configuration file looked up in the home directory.
const FileName = ".ai.conf.toml"

// envPrefix is the environment variable prefix, so pipeline.max_concurrency
// becomes AI_PIPELINE_MAX_CONCURRENCY.
const envPrefix = "AI"

// valid log formats, levels and providers
var (
	validLogFormats = []string{"text", "json"}
	validLogLevels  = []string{"trace", "debug", "info", "warn", "error"}
	validProviders  = []string{"claude", "gemini", "ollama", "openai"}
)

// Defaults
const (
	DefaultMaxDiffLength         = 8000
	DefaultMaxConcurrency        = 3
	DefaultSegmentTimeoutSeconds = 30
	DefaultSummaryPromptVersion  = "v1"
	DefaultProvider              = "ollama"
	DefaultMaxResponseTokens     = 2000
	DefaultModelTimeoutSeconds   = 120
	DefaultGitLabBaseURL         = "https://gitlab.com"
)

// DefaultCommitPrompt is used when git.commit_prompt is unset. {diff} is replaced
// with the diff or, for large changes, with the aggregated summary.
const DefaultCommitPrompt = `Write a git commit message for the following changes.
Use a short imperative subject line of at most 72 characters, then a blank line,
then a concise body explaining what changed. Reply with the commit message only.

{diff}`

type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Model    ModelConfig    `mapstructure:"model"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Git      GitConfig      `mapstructure:"git"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	GitLab   GitLabConfig   `mapstructure:"gitlab"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`

	// File is the configuration file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

type LogConfig struct {
	Format string `mapstructure:"format"`
	Level  string `mapstructure:"level"`
}

type ModelConfig struct {
	Provider          string `mapstructure:"provider"`
	API               string `mapstructure:"api"`
	ID                string `mapstructure:"id"`
	UserKey           string `mapstructure:"user_key"`
	MaxResponseTokens int    `mapstructure:"max_response_tokens"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"`
	SkipSSLVerify     bool   `mapstructure:"skip_ssl_verify"`
}

// PipelineConfig controls segmentation and concurrent summarization of large diffs.
type PipelineConfig struct {
	MaxDiffLength         int    `mapstructure:"max_diff_length"`
	MaxConcurrency        int    `mapstructure:"max_concurrency"`
	SegmentTimeoutSeconds int    `mapstructure:"segment_timeout_seconds"`
	SummaryPromptVersion  string `mapstructure:"summary_prompt_version"`
}

type GitConfig struct {
	CommitPrompt string `mapstructure:"commit_prompt"`
}

type GitHubConfig struct {
	Token string `mapstructure:"token"`
}

type GitLabConfig struct {
	Token         string `mapstructure:"token"`
	BaseURL       string `mapstructure:"base_url"`
	SkipSSLVerify bool   `mapstructure:"skip_ssl_verify"`
}

type MetricsConfig struct {
	// Textfile, when set, receives the run's metrics in Prometheus text format.
	Textfile string `mapstructure:"textfile"`
}

// Load reads configuration from path, or from ~/.ai.conf.toml when path is empty,
// applies AI_* environment overrides and validates the result. A missing default
// file is not an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, FileName)
		if _, statErr := os.Stat(candidate); statErr == nil {
			path = candidate
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.format", "text")
	v.SetDefault("log.level", "info")

	v.SetDefault("model.provider", DefaultProvider)
	v.SetDefault("model.api", "")
	v.SetDefault("model.id", "")
	v.SetDefault("model.user_key", "")
	v.SetDefault("model.max_response_tokens", DefaultMaxResponseTokens)
	v.SetDefault("model.timeout_seconds", DefaultModelTimeoutSeconds)
	v.SetDefault("model.skip_ssl_verify", false)

	v.SetDefault("pipeline.max_diff_length", DefaultMaxDiffLength)
	v.SetDefault("pipeline.max_concurrency", DefaultMaxConcurrency)
	v.SetDefault("pipeline.segment_timeout_seconds", DefaultSegmentTimeoutSeconds)
	v.SetDefault("pipeline.summary_prompt_version", DefaultSummaryPromptVersion)

	v.SetDefault("git.commit_prompt", DefaultCommitPrompt)

	v.SetDefault("github.token", "")
	v.SetDefault("gitlab.token", "")
	v.SetDefault("gitlab.base_url", DefaultGitLabBaseURL)
	v.SetDefault("gitlab.skip_ssl_verify", false)

	v.SetDefault("metrics.textfile", "")
}

// validateConfig performs all validation on the loaded configuration
func validateConfig(cfg *Config) error {

	// Validate logging configuration
	if !slices.Contains(validLogFormats, strings.ToLower(cfg.Log.Format)) {
		return fmt.Errorf("log.format must be one of: %v; got: %s", validLogFormats, cfg.Log.Format)
	}
	if !slices.Contains(validLogLevels, strings.ToLower(cfg.Log.Level)) {
		return fmt.Errorf("log.level must be one of: %v; got: %s", validLogLevels, cfg.Log.Level)
	}

	// Validate pipeline configuration
	if err := checkRange("pipeline.max_diff_length", cfg.Pipeline.MaxDiffLength, 1, 100000000); err != nil {
		return err
	}
	if err := checkRange("pipeline.max_concurrency", cfg.Pipeline.MaxConcurrency, 1, 64); err != nil {
		return err
	}
	if err := checkRange("pipeline.segment_timeout_seconds", cfg.Pipeline.SegmentTimeoutSeconds, 1, 3600); err != nil {
		return err
	}

	// Validate model limits; credentials are checked by ValidateModel when a model is needed
	if err := checkRange("model.max_response_tokens", cfg.Model.MaxResponseTokens, 1, 1000000000); err != nil {
		return err
	}
	if err := checkRange("model.timeout_seconds", cfg.Model.TimeoutSeconds, 1, 1000000000); err != nil {
		return err
	}
	// the HTTP client must not give up before the per-segment deadline does
	if cfg.Model.TimeoutSeconds < cfg.Pipeline.SegmentTimeoutSeconds {
		return fmt.Errorf("model.timeout_seconds (%d) must not be below pipeline.segment_timeout_seconds (%d)",
			cfg.Model.TimeoutSeconds, cfg.Pipeline.SegmentTimeoutSeconds)
	}

	if !strings.Contains(cfg.Git.CommitPrompt, "{diff}") {
		return fmt.Errorf("git.commit_prompt must contain the {diff} placeholder")
	}

	return nil
}

// ValidateModel checks the settings needed to talk to a model provider. Empty
// model.api and model.id fall back to the provider's defaults, except for claude
// whose endpoint is project specific.
func (c *Config) ValidateModel() error {
	provider := strings.ToLower(c.Model.Provider)
	if !slices.Contains(validProviders, provider) {
		return fmt.Errorf("model.provider must be one of: %v; got: %s", validProviders, c.Model.Provider)
	}
	if provider == "claude" && c.Model.API == "" {
		return fmt.Errorf("model.api is required for provider claude (AI_MODEL_API)")
	}
	if provider == "claude" && c.Model.ID == "" {
		return fmt.Errorf("model.id is required for provider claude (AI_MODEL_ID)")
	}
	if provider != "ollama" && c.Model.UserKey == "" {
		return fmt.Errorf("model.user_key is required for provider %s (AI_MODEL_USER_KEY)", provider)
	}
	return nil
}

// SetLogLevel overrides log.level, e.g. from a command line flag
func (c *Config) SetLogLevel(level string) error {
	if !slices.Contains(validLogLevels, strings.ToLower(level)) {
		return fmt.Errorf("log level must be one of: %v; got: %s", validLogLevels, level)
	}
	c.Log.Level = strings.ToLower(level)
	return nil
}

// checkRange reports values outside [min, max]
func checkRange(key string, val, min, max int) error {
	if val < min || val > max {
		return fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, val)
	}
	return nil
}
