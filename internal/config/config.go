// Package config resolves cinegraph settings from flags, environment
// variables and an optional YAML config file.
//
// Precedence, highest first: command-line flags, CINEGRAPH_* environment
// variables, the config file, defaults.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// EnvPrefix prefixes every environment variable, e.g. CINEGRAPH_DATASET.
const EnvPrefix = "CINEGRAPH"

// DefaultConfigName is the config file searched for in the working
// directory when no file is given explicitly.
const DefaultConfigName = ".cinegraph"

// Keys understood by the loader. Flags with the same name are bound to them.
const (
	KeyDataset     = "dataset"
	KeyPlans       = "plans"
	KeyFormat      = "format"
	KeyVerbose     = "verbose"
	KeyConcurrency = "concurrency"
	KeyLocale      = "locale"
)

var keys = []string{KeyDataset, KeyPlans, KeyFormat, KeyVerbose, KeyConcurrency, KeyLocale}

// ValidFormats are the accepted output formats.
var ValidFormats = []string{"text", "json"}

// Config is the resolved configuration.
type Config struct {
	// Dataset is the .yaml or .sql dataset file.
	Dataset string `mapstructure:"dataset"`

	// Plans is the directory of CUE plan files.
	Plans string `mapstructure:"plans"`

	// Format is the output format: text or json.
	Format string `mapstructure:"format"`

	// Verbose enables debug logging.
	Verbose bool `mapstructure:"verbose"`

	// Concurrency bounds how many plans resolve at once.
	Concurrency int `mapstructure:"concurrency"`

	// Locale is the BCP 47 tag used for collated sorting.
	Locale string `mapstructure:"locale"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// LocaleTag parses Locale.
func (c *Config) LocaleTag() (language.Tag, error) {
	return language.Parse(c.Locale)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if !slices.Contains(ValidFormats, c.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", c.Format, ValidFormats)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if _, err := c.LocaleTag(); err != nil {
		return fmt.Errorf("invalid locale %q: %w", c.Locale, err)
	}
	return nil
}

// Loader wraps a viper instance with the cinegraph defaults and env
// bindings.
type Loader struct {
	v *viper.Viper
}

// NewLoader returns a loader with defaults set and CINEGRAPH_* environment
// variables bound.
func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyDataset, "")
	v.SetDefault(KeyPlans, "")
	v.SetDefault(KeyFormat, "text")
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyConcurrency, 4)
	v.SetDefault(KeyLocale, "und")

	return &Loader{v: v}
}

// BindFlags binds every flag in fs whose name is a config key. Flags only
// override lower layers when set on the command line.
func (l *Loader) BindFlags(fs *pflag.FlagSet) error {
	for _, key := range keys {
		f := fs.Lookup(key)
		if f == nil {
			continue
		}
		if err := l.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", key, err)
		}
	}
	return nil
}

// Load reads the config file and returns the merged, validated
// configuration. An explicit file must exist; otherwise .cinegraph.yaml in
// the working directory is read when present.
func (l *Loader) Load(file string) (*Config, error) {
	if file != "" {
		l.v.SetConfigFile(file)
	} else {
		l.v.SetConfigName(DefaultConfigName)
		l.v.AddConfigPath(".")
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.File = l.v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
