package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/cinegraph/internal/compiler"
	"github.com/roach88/cinegraph/internal/dataset"
	"github.com/roach88/cinegraph/internal/engine"
	"github.com/roach88/cinegraph/internal/index"
	"github.com/roach88/cinegraph/internal/queryir"
	"github.com/roach88/cinegraph/internal/store"
	"github.com/roach88/cinegraph/internal/testutil"
)

// Run executes a test scenario and returns the result.
//
// Each scenario loads its dataset into a fresh store for isolation, and a
// fixed query id keeps the output reproducible.
//
// Execution flow:
// 1. Load the dataset into a new store and build the index
// 2. Compile the CUE plans
// 3. Resolve the selected plans
// 4. Evaluate assertions and return the result with pass/fail, trace and errors
//
// A returned error means the scenario could not run (bad dataset, plan that
// fails to compile or resolve). Assertion failures are reported in the
// result instead.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	records, err := dataset.Load(ctx, scenario.Dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	st := store.New()
	if err := st.Load(records); err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	idx, err := index.Build(st)
	if err != nil {
		return nil, fmt.Errorf("failed to build index: %w", err)
	}

	plans, err := compiler.LoadPlans(scenario.Plans)
	if err != nil {
		return nil, fmt.Errorf("failed to compile plans: %w", err)
	}
	byName := make(map[string]queryir.Plan, len(plans))
	for _, p := range plans {
		byName[p.Name] = p
	}

	selected, err := selectPlans(plans, byName, scenario.Queries)
	if err != nil {
		return nil, err
	}

	queryID := scenario.QueryID
	if queryID == "" {
		queryID = DefaultQueryID
	}
	eng := engine.New(st, idx,
		engine.WithQueryIDGenerator(testutil.NewFixedQueryIDGenerator(queryID)),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in tests
	)

	results, err := eng.ResolveAll(ctx, selected)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve plans: %w", err)
	}

	result := NewResult()
	for _, res := range results {
		result.AddQueryTrace(res)
	}

	// Evaluate assertions against the result
	actx := &AssertionContext{
		Ctx:     ctx,
		Records: records,
		Plans:   byName,
	}
	defer actx.Close()

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// selectPlans returns the plans named by queries, in that order, or every
// plan when queries is empty.
func selectPlans(all []queryir.Plan, byName map[string]queryir.Plan, queries []string) ([]queryir.Plan, error) {
	if len(queries) == 0 {
		return all, nil
	}
	selected := make([]queryir.Plan, 0, len(queries))
	for _, name := range queries {
		p, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("plan %q not found", name)
		}
		selected = append(selected, p)
	}
	return selected, nil
}
