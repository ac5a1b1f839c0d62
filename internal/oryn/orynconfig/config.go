// Package orynconfig loads the yaml-based configuration oryn's CLI and
// pipeline stages read at startup.
package orynconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"oryn/internal/oryn/obslog"
)

// Config holds all oryn configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	Backend  BackendConfig  `yaml:"backend"`
	Executor ExecutorConfig `yaml:"executor"`
	Resolver ResolverConfig `yaml:"resolver"`
	Learner  LearnerConfig  `yaml:"learner"`
	Logging  obslog.Config  `yaml:"logging"`
}

// BackendConfig controls the browser driver.
type BackendConfig struct {
	Driver     string `yaml:"driver"` // "rod" or "fake"
	Headless   bool   `yaml:"headless"`
	UserDataDir string `yaml:"user_data_dir"`
	Timeout    string `yaml:"timeout"`
}

// ExecutorConfig controls pipeline-wide defaults.
type ExecutorConfig struct {
	DefaultTimeout string `yaml:"default_timeout"`
	RetryOnStale   bool   `yaml:"retry_on_stale"`
	MaxRetries     int    `yaml:"max_retries"`
}

// ResolverConfig controls scoring/strategy defaults.
type ResolverConfig struct {
	DefaultStrategy  string `yaml:"default_strategy"`
	AllowInference   bool   `yaml:"allow_inference"`
	MinMatchScore    int    `yaml:"min_match_score"`
}

// LearnerConfig controls the peripheral intent-learning subsystem.
type LearnerConfig struct {
	Enabled    bool   `yaml:"enabled"`
	StorePath  string `yaml:"store_path"`
	AutoVerify bool   `yaml:"auto_verify"`
}

// DefaultConfig returns the baseline configuration used when no config file
// is present.
func DefaultConfig() *Config {
	return &Config{
		Name:    "oryn",
		Version: "0.1.0",
		Backend: BackendConfig{
			Driver:   "rod",
			Headless: true,
			Timeout:  "30s",
		},
		Executor: ExecutorConfig{
			DefaultTimeout: "30s",
			RetryOnStale:   true,
			MaxRetries:     1,
		},
		Resolver: ResolverConfig{
			DefaultStrategy: "best",
			AllowInference:  true,
			MinMatchScore:   1,
		},
		Learner: LearnerConfig{
			Enabled:   true,
			StorePath: "", // learner.NewStore resolves "" to ~/.oryn/learned
		},
		Logging: obslog.Config{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Load reads configuration from path, falling back to defaults (plus env
// overrides) when the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes cfg as YAML to path, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadDotenv loads a .env file (if present) into the process environment
// before Load runs, so ORYN_* variables set there take effect.
func LoadDotenv(path string) {
	_ = godotenv.Load(path)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ORYN_BACKEND_DRIVER"); v != "" {
		c.Backend.Driver = v
	}
	if v := os.Getenv("ORYN_HEADLESS"); v == "false" {
		c.Backend.Headless = false
	}
	if v := os.Getenv("ORYN_USER_DATA_DIR"); v != "" {
		c.Backend.UserDataDir = v
	}
	if v := os.Getenv("ORYN_DEFAULT_TIMEOUT"); v != "" {
		c.Executor.DefaultTimeout = v
	}
	if v := os.Getenv("ORYN_DEBUG"); v == "true" {
		c.Logging.DebugMode = true
	}
}

// GetDefaultTimeout parses Executor.DefaultTimeout, falling back to 30s on
// a malformed value.
func (c *Config) GetDefaultTimeout() time.Duration {
	d, err := time.ParseDuration(c.Executor.DefaultTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetBackendTimeout parses Backend.Timeout, falling back to 30s.
func (c *Config) GetBackendTimeout() time.Duration {
	d, err := time.ParseDuration(c.Backend.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
