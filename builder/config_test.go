package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.Source)
	assert.Equal(t, "_build", cfg.Output)
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcqbuild.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"source: docs\noutput: public\nstylesheet: mcq.css\nlog_level: debug\n",
	), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "docs", cfg.Source)
	assert.Equal(t, "public", cfg.Output)
	assert.Equal(t, "mcq.css", cfg.Stylesheet)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Unset keys keep their defaults.
	assert.Equal(t, "en", cfg.Language)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcqbuild.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: docs\n"), 0o644))
	t.Setenv("MCQBUILD_SOURCE", "env-docs")
	t.Setenv("MCQBUILD_TITLE", "Quiz")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env-docs", cfg.Source)
	assert.Equal(t, "Quiz", cfg.Title)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: [unclosed\n"), 0o644))
	_, err := LoadConfig(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.ErrorIs(t, Config{Output: "out"}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Config{Source: "src"}.Validate(), ErrInvalidConfig)
}
