package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/harrison/adl/internal/logger"
)

// DirName is the per project directory holding config, logs and the store
const DirName = ".adl"

// RenderConfig controls output post-processing
type RenderConfig struct {
	// HTML renders compiled prompts to HTML
	HTML bool `yaml:"html"`

	// CodeBlocks runs fenced code blocks through the registered runners
	CodeBlocks bool `yaml:"code_blocks"`
}

// Config represents adl configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs are written
	LogDir string `yaml:"log_dir"`

	// UseCaseDir is searched for referenced use cases
	UseCaseDir string `yaml:"use_case_dir"`

	// StorePath is the SQLite document store
	StorePath string `yaml:"store_path"`

	// ExampleLimit caps example lines per use case (0 = unlimited)
	ExampleLimit int `yaml:"example_limit"`

	// FallbackLimit is the number of uses after which a fallback solution is used
	FallbackLimit int `yaml:"fallback_limit"`

	// Conditions are active for every compilation
	Conditions []string `yaml:"conditions"`

	Render RenderConfig `yaml:"render"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel:      "info",
		LogDir:        filepath.Join(DirName, "logs"),
		StorePath:     filepath.Join(DirName, "store.db"),
		ExampleLimit:  0,
		FallbackLimit: 2,
		Render: RenderConfig{
			CodeBlocks: true,
		},
	}
}

// LoadConfig loads configuration from path, layered over the defaults.
// A missing file yields the defaults; a malformed one is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Decoding into the defaults keeps every key the file leaves out
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadConfigFromDir loads .adl/config.yaml from dir
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, DirName, "config.yaml"))
}

// Flags holds CLI values that override the file. Nil fields are unset.
type Flags struct {
	LogLevel      *string
	LogDir        *string
	UseCaseDir    *string
	StorePath     *string
	ExampleLimit  *int
	FallbackLimit *int
	Conditions    []string // Added to the configured conditions
	HTML          *bool
}

// MergeWithFlags applies CLI flags so they take precedence over the file
func (c *Config) MergeWithFlags(f Flags) {
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}
	if f.LogDir != nil {
		c.LogDir = *f.LogDir
	}
	if f.UseCaseDir != nil {
		c.UseCaseDir = *f.UseCaseDir
	}
	if f.StorePath != nil {
		c.StorePath = *f.StorePath
	}
	if f.ExampleLimit != nil {
		c.ExampleLimit = *f.ExampleLimit
	}
	if f.FallbackLimit != nil {
		c.FallbackLimit = *f.FallbackLimit
	}
	for _, cond := range f.Conditions {
		if !containsString(c.Conditions, cond) {
			c.Conditions = append(c.Conditions, cond)
		}
	}
	if f.HTML != nil {
		c.Render.HTML = *f.HTML
	}
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if !logger.IsValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}
	if c.ExampleLimit < 0 {
		return fmt.Errorf("example_limit must be >= 0, got %d", c.ExampleLimit)
	}
	if c.FallbackLimit < 0 {
		return fmt.Errorf("fallback_limit must be >= 0, got %d", c.FallbackLimit)
	}
	for _, cond := range c.Conditions {
		if cond == "" {
			return fmt.Errorf("conditions cannot contain empty entries")
		}
	}
	if c.UseCaseDir != "" {
		info, err := os.Stat(c.UseCaseDir)
		if err != nil {
			return fmt.Errorf("use_case_dir %q: %w", c.UseCaseDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("use_case_dir %q is not a directory", c.UseCaseDir)
		}
	}
	return nil
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
