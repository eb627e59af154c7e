package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cinegraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String(KeyDataset, "", "")
	fs.String(KeyFormat, "text", "")
	fs.BoolP(KeyVerbose, "v", false, "")
	fs.Int(KeyConcurrency, 4, "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := NewLoader().Load("")
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Dataset)
	assert.Equal(t, "", cfg.Plans)
	assert.Equal(t, "text", cfg.Format)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, "", cfg.File)

	tag, err := cfg.LocaleTag()
	require.NoError(t, err)
	assert.Equal(t, language.Und, tag)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
dataset: testdata/datasets/films.yaml
plans: testdata/plans
format: json
concurrency: 2
locale: fr
`)

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "testdata/datasets/films.yaml", cfg.Dataset)
	assert.Equal(t, "testdata/plans", cfg.Plans)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, path, cfg.File)

	tag, err := cfg.LocaleTag()
	require.NoError(t, err)
	assert.Equal(t, language.French, tag)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := NewLoader().Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "dataset: from-file.yaml\nconcurrency: 2\n")
	t.Setenv("CINEGRAPH_DATASET", "from-env.sql")
	t.Setenv("CINEGRAPH_VERBOSE", "true")

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env.sql", cfg.Dataset)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, 2, cfg.Concurrency)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("CINEGRAPH_DATASET", "from-env.sql")
	t.Setenv("CINEGRAPH_FORMAT", "json")

	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--dataset", "from-flag.yaml"}))

	l := NewLoader()
	require.NoError(t, l.BindFlags(fs))
	cfg, err := l.Load("")
	require.NoError(t, err)

	assert.Equal(t, "from-flag.yaml", cfg.Dataset)
	// Unset flags do not shadow the environment.
	assert.Equal(t, "json", cfg.Format)
}

func TestBindFlags_IgnoresUnknownFlags(t *testing.T) {
	fs := pflag.NewFlagSet("other", pflag.ContinueOnError)
	fs.Bool("update", false, "")
	assert.NoError(t, NewLoader().BindFlags(fs))
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{Format: "text", Concurrency: 1, Locale: "en-US"}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"bad format", func(c *Config) { c.Format = "xml" }, `invalid format "xml"`},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, "concurrency must be at least 1"},
		{"bad locale", func(c *Config) { c.Locale = "not a tag!" }, "invalid locale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	c := valid()
	assert.NoError(t, c.Validate())
}

func TestLoad_InvalidValueFromEnv(t *testing.T) {
	t.Setenv("CINEGRAPH_FORMAT", "yaml")

	_, err := NewLoader().Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "yaml"`)
}
