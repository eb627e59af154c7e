package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/cinegraph/internal/engine"
	"github.com/roach88/cinegraph/internal/queryir"
	"github.com/roach88/cinegraph/internal/querysql"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Explain bool // print the SQL rendering instead of resolving
	Limit   int  // overrides every plan's limit when positive
	Count   bool // print row counts only

	// QueryIDs allows overriding the query id generator (for testing).
	// If nil, the engine default (UUIDv7) is used.
	QueryIDs engine.QueryIDGenerator
}

// QueryOutput is the result of one plan.
type QueryOutput struct {
	Plan    string                `json:"plan"`
	QueryID string                `json:"query_id"`
	Count   int                   `json:"count"`
	Rows    []engine.ResultEntity `json:"rows,omitempty"`
}

// ExplainOutput is the SQL rendering of one plan.
type ExplainOutput struct {
	Plan string `json:"plan"`
	SQL  string `json:"sql"`
	Args []any  `json:"args"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query [plans-dir] [plan...]",
		Short: "Resolve plans against a dataset",
		Long: `Resolve CUE plans against a dataset and print the result rows.

Without plan names every plan in the directory is resolved, in file
order. Without a directory the configured plans directory is used.

Examples:
  cinegraph query ./plans --dataset films.yaml
  cinegraph query ./plans actors_in_2015_films --dataset films.sql
  cinegraph query ./plans all_actors --limit 5 --format json
  cinegraph query ./plans --explain`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Explain, "explain", false, "print the equivalent SQL instead of resolving")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "cap the rows of every plan (0 keeps the plan's own limit)")
	cmd.Flags().BoolVar(&opts.Count, "count", false, "print row counts only")

	return cmd
}

func runQuery(opts *QueryOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	log := opts.logger()

	plansDir, names := opts.plansDir(args)
	if plansDir == "" {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "no plans directory given", nil)
	}
	if opts.Limit < 0 {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("limit must be non-negative, got %d", opts.Limit), nil)
	}

	loadResult, loadErrors := LoadPlans(plansDir, LoadModeFailFast)
	if len(loadErrors) > 0 {
		return failLoad(formatter, ExitCommandError, loadErrors[0])
	}
	plans, err := selectPlans(loadResult.Plans, names)
	if err != nil {
		return failLoad(formatter, ExitCommandError, err)
	}
	if opts.Limit > 0 {
		for i := range plans {
			plans[i].Limit = opts.Limit
		}
	}
	log.Debug("plans compiled", "dir", plansDir, "files", len(loadResult.Files), "plans", len(plans))

	if opts.Explain {
		return explainPlans(formatter, plans)
	}

	ctx, stop := commandContext(cmd)
	defer stop()

	st, idx, err := loadDataset(ctx, opts.Dataset)
	if err != nil {
		return failLoad(formatter, ExitCommandError, err)
	}
	log.Debug("dataset loaded", "path", opts.Dataset, "digest", idx.Digest())

	tag, err := opts.localeTag()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	engOpts := []engine.Option{
		engine.WithLogger(log),
		engine.WithConcurrency(opts.Concurrency),
		engine.WithLocale(tag),
	}
	if opts.QueryIDs != nil {
		engOpts = append(engOpts, engine.WithQueryIDGenerator(opts.QueryIDs))
	}
	eng := engine.New(st, idx, engOpts...)

	results, err := eng.ResolveAll(ctx, plans)
	if err != nil {
		code := MapPlanErrorToCode(err)
		if code == ErrCodeGeneric {
			code = ErrCodeQueryFailed
		}
		return formatter.Fail(ExitFailure, code, err.Error(), nil)
	}

	outputs := make([]QueryOutput, len(results))
	for i, res := range results {
		outputs[i] = QueryOutput{Plan: res.Plan, QueryID: res.QueryID, Count: res.Len()}
		if !opts.Count {
			outputs[i].Rows = res.Rows
		}
	}

	if formatter.IsJSON() {
		return formatter.Success(outputs)
	}
	return outputQueryText(formatter, outputs, opts.Count)
}

// plansDir splits the positional arguments into the plans directory and
// plan names, falling back to the configured directory.
func (o *QueryOptions) plansDir(args []string) (string, []string) {
	if len(args) > 0 {
		return args[0], args[1:]
	}
	if o.Config != nil {
		return o.Config.Plans, nil
	}
	return "", nil
}

// commandContext returns the command's context, cancelled on SIGINT or
// SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func explainPlans(formatter *OutputFormatter, plans []queryir.Plan) error {
	compiler := querysql.NewSQLCompiler()
	outputs := make([]ExplainOutput, 0, len(plans))
	for _, p := range plans {
		query, args, err := compiler.Compile(p)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeInvalidPlan, fmt.Sprintf("plan %s: %v", p.Name, err), nil)
		}
		if args == nil {
			args = []any{}
		}
		outputs = append(outputs, ExplainOutput{Plan: p.Name, SQL: query, Args: args})
	}

	if formatter.IsJSON() {
		return formatter.Success(outputs)
	}
	w := formatter.Writer
	for i, out := range outputs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "-- %s\n%s;\n", out.Plan, out.SQL)
		if len(out.Args) > 0 {
			fmt.Fprintf(w, "-- args: %v\n", out.Args)
		}
	}
	return nil
}

func outputQueryText(formatter *OutputFormatter, outputs []QueryOutput, countOnly bool) error {
	w := formatter.Writer
	for i, out := range outputs {
		if countOnly {
			fmt.Fprintf(w, "%s\t%d\n", out.Plan, out.Count)
			continue
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d rows, query %s)\n", out.Plan, out.Count, out.QueryID)

		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, r := range out.Rows {
			fmt.Fprintf(tw, "  %d\t%s\t%s\n", r.ID, r.Kind, r.Display)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
