package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/cinegraph/internal/dataset"
	"github.com/roach88/cinegraph/internal/model"
	"github.com/roach88/cinegraph/internal/queryir"
	"github.com/roach88/cinegraph/internal/querysql"
	"github.com/roach88/cinegraph/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Plan     string   // Plan the assertion checked
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Rows     []string // Row displays for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	// Header with assertion type
	fmt.Fprintf(&buf, "Assertion failed: %s on %s\n", e.Type, e.Plan)

	// Expected vs Actual (most important info)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	// Rows for context
	if len(e.Rows) > 0 {
		fmt.Fprintf(&buf, "\nRows:\n")
		for i, d := range e.Rows {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, d)
		}
	}

	return buf.String()
}

// assertCount checks the exact number of rows.
func assertCount(q QueryTrace, assertion Assertion) error {
	if q.Count != *assertion.Count {
		return &AssertionError{
			Type:     AssertCount,
			Plan:     q.Plan,
			Expected: fmt.Sprintf("%d rows", *assertion.Count),
			Actual:   fmt.Sprintf("%d rows", q.Count),
			Rows:     q.Displays(),
		}
	}
	return nil
}

// assertFirst checks the display of the first row.
func assertFirst(q QueryTrace, assertion Assertion) error {
	if len(q.Rows) == 0 {
		return &AssertionError{
			Type:     AssertFirst,
			Plan:     q.Plan,
			Expected: fmt.Sprintf("first row %q", assertion.Display),
			Actual:   "no rows",
		}
	}
	if q.Rows[0].Display != assertion.Display {
		return &AssertionError{
			Type:     AssertFirst,
			Plan:     q.Plan,
			Expected: fmt.Sprintf("first row %q", assertion.Display),
			Actual:   fmt.Sprintf("first row %q", q.Rows[0].Display),
			Rows:     q.Displays(),
		}
	}
	return nil
}

// assertContains checks that each expected display appears at least once.
// Order and extra rows are ignored.
func assertContains(q QueryTrace, assertion Assertion) error {
	displays := q.Displays()
	var missing []string
	for _, want := range assertion.Displays {
		if !slices.Contains(displays, want) {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return &AssertionError{
			Type:     AssertContains,
			Plan:     q.Plan,
			Expected: fmt.Sprintf("rows containing %q", assertion.Displays),
			Actual:   fmt.Sprintf("missing %q", missing),
			Rows:     displays,
		}
	}
	return nil
}

// assertRows checks the exact display sequence.
func assertRows(q QueryTrace, assertion Assertion) error {
	displays := q.Displays()
	if !slices.Equal(displays, assertion.Displays) {
		return &AssertionError{
			Type:     AssertRows,
			Plan:     q.Plan,
			Expected: fmt.Sprintf("%q", assertion.Displays),
			Actual:   fmt.Sprintf("%q", displays),
		}
	}
	return nil
}

// assertSubset checks that every entity q returns is also returned by of.
// This is how conjunctive filters are checked against each single filter.
func assertSubset(q, of QueryTrace) error {
	ids := make(map[model.EntityID]struct{}, len(of.Rows))
	for _, r := range of.Rows {
		ids[r.ID] = struct{}{}
	}
	for _, r := range q.Rows {
		if _, ok := ids[r.ID]; !ok {
			return &AssertionError{
				Type:     AssertSubset,
				Plan:     q.Plan,
				Expected: fmt.Sprintf("every row also in %s", of.Plan),
				Actual:   fmt.Sprintf("%s %d %q not in %s", r.Kind, r.ID, r.Display, of.Plan),
				Rows:     q.Displays(),
			}
		}
	}
	return nil
}

// assertMatchesSQL renders the plan as SQL, runs it against the SQLite copy
// of the dataset and compares display sequences.
func assertMatchesSQL(actx *AssertionContext, q QueryTrace) error {
	plan, ok := actx.Plans[q.Plan]
	if !ok {
		return fmt.Errorf("matches_sql: plan %q not loaded", q.Plan)
	}
	query, args, err := querysql.NewSQLCompiler().Compile(plan)
	if err != nil {
		return fmt.Errorf("matches_sql: %w", err)
	}

	db, err := actx.database()
	if err != nil {
		return fmt.Errorf("matches_sql: %w", err)
	}
	rows, err := db.QueryRows(actx.Ctx, query, args...)
	if err != nil {
		return &AssertionError{
			Type:     AssertMatchesSQL,
			Plan:     q.Plan,
			Expected: "query to execute",
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}

	got := make([]string, len(rows))
	for i, r := range rows {
		got[i] = r.Display
	}
	if want := q.Displays(); !slices.Equal(want, got) {
		return &AssertionError{
			Type:     AssertMatchesSQL,
			Plan:     q.Plan,
			Expected: fmt.Sprintf("%q", want),
			Actual:   fmt.Sprintf("%q", got),
		}
	}
	return nil
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Ctx context.Context

	// Records is the dataset the scenario loaded. matches_sql copies it
	// into an in-memory SQLite database on first use.
	Records []store.Record

	// Plans holds the compiled plans by name.
	Plans map[string]queryir.Plan

	db *dataset.DB
}

func (a *AssertionContext) database() (*dataset.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := dataset.OpenSQL(dataset.MemoryPath)
	if err != nil {
		return nil, err
	}
	if err := db.Insert(a.Ctx, a.Records); err != nil {
		db.Close()
		return nil, err
	}
	a.db = db
	return db, nil
}

// Close releases the SQLite database, if one was opened.
func (a *AssertionContext) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides dataset access for matches_sql assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		q, ok := result.Query(assertion.Plan)
		if !ok {
			errors = append(errors, fmt.Sprintf("assertion[%d]: plan %q was not resolved", i, assertion.Plan))
			continue
		}

		var err error
		switch assertion.Type {
		case AssertCount:
			err = assertCount(q, assertion)
		case AssertFirst:
			err = assertFirst(q, assertion)
		case AssertContains:
			err = assertContains(q, assertion)
		case AssertRows:
			err = assertRows(q, assertion)
		case AssertSubset:
			of, found := result.Query(assertion.Of)
			if !found {
				err = fmt.Errorf("assertion[%d]: plan %q was not resolved", i, assertion.Of)
			} else {
				err = assertSubset(q, of)
			}
		case AssertMatchesSQL:
			if actx == nil || actx.Records == nil {
				err = fmt.Errorf("assertion[%d]: matches_sql requires dataset context", i)
			} else {
				err = assertMatchesSQL(actx, q)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
