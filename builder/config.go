package builder

import (
	"errors"
	"fmt"
	"os"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// Common errors for configuration loading.
var (
	ErrConfigNotFound = errors.New("configuration file not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Config holds build settings. Values are resolved in order: defaults,
// then a YAML config file, then MCQBUILD_* environment variables.
type Config struct {
	// Source is the directory scanned for .rst files.
	Source string `yaml:"source" env:"MCQBUILD_SOURCE"`
	// Output is the directory HTML files are written to.
	Output string `yaml:"output" env:"MCQBUILD_OUTPUT"`
	// Stylesheet is linked from every generated page when non-empty.
	Stylesheet string `yaml:"stylesheet" env:"MCQBUILD_STYLESHEET"`
	// Title overrides the per-document page title.
	Title string `yaml:"title" env:"MCQBUILD_TITLE"`
	// Language is the lang attribute of generated pages.
	Language string `yaml:"language" env:"MCQBUILD_LANGUAGE"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"MCQBUILD_LOG_LEVEL"`
	// LogFormat is text or json.
	LogFormat string `yaml:"log_format" env:"MCQBUILD_LOG_FORMAT"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Source:    ".",
		Output:    "_build",
		Language:  "en",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// LoadConfig resolves a Config. path may be empty, in which case only
// defaults and environment variables apply.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	// Environment variables override the file. envdecode reports an
	// error when no tagged variable is set; that is not a failure here.
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return cfg, fmt.Errorf("failed to decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that the resolved configuration is usable.
func (c Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("%w: source directory is empty", ErrInvalidConfig)
	}
	if c.Output == "" {
		return fmt.Errorf("%w: output directory is empty", ErrInvalidConfig)
	}
	return nil
}
