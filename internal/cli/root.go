package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/roach88/cinegraph/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile  string
	Verbose     bool
	Format      string // "json" | "text"
	Dataset     string
	Concurrency int
	Locale      string

	// Config is the merged configuration, set before any subcommand runs.
	Config *config.Config

	// Logger writes diagnostics to stderr. Debug level with --verbose.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = config.ValidFormats

// NewRootCommand creates the root command for the cinegraph CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cinegraph",
		Short: "cinegraph - film relational query engine",
		Long: `Query an in-memory graph of actors, directors, countries, films and roles.

Plans are written in CUE and resolved against a dataset loaded from YAML
or from a SQL dump. Settings come from flags, CINEGRAPH_* environment
variables or a .cinegraph.yaml config file.`,
		SilenceUsage:  true,
		SilenceErrors: true, // main prints the error once
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.ConfigFile, "config", "", "config file (default ./.cinegraph.yaml)")
	pf.BoolVarP(&opts.Verbose, config.KeyVerbose, "v", false, "verbose output")
	pf.StringVar(&opts.Format, config.KeyFormat, "text", "output format (json|text)")
	pf.StringVar(&opts.Dataset, config.KeyDataset, "", "dataset file (.yaml or .sql)")
	pf.IntVar(&opts.Concurrency, config.KeyConcurrency, 4, "plans resolved at once")
	pf.StringVar(&opts.Locale, config.KeyLocale, "und", "collation locale (BCP 47)")

	// Add subcommands
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// resolve merges flags with the environment and config file, then sets up
// logging.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	loader := config.NewLoader()
	if err := loader.BindFlags(cmd.Flags()); err != nil {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}
	cfg, err := loader.Load(o.ConfigFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	o.Config = cfg
	o.Verbose = cfg.Verbose
	o.Format = cfg.Format
	o.Dataset = cfg.Dataset
	o.Concurrency = cfg.Concurrency
	o.Locale = cfg.Locale
	o.Logger = newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	return nil
}

// newLogger builds the stderr text logger. Without --verbose only warnings
// and errors are shown.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// logger returns the configured logger, or a discarding one when the
// command runs without the root pre-run (tests calling run functions
// directly).
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// localeTag parses the collation locale. Empty means the root collation.
func (o *RootOptions) localeTag() (language.Tag, error) {
	if o.Locale == "" {
		return language.Und, nil
	}
	return language.Parse(o.Locale)
}
