package harness

import (
	"github.com/roach88/cinegraph/internal/engine"
)

// QueryTrace records one resolved plan.
type QueryTrace struct {
	Plan    string                `json:"plan"`
	QueryID string                `json:"query_id"`
	Count   int                   `json:"count"`
	Rows    []engine.ResultEntity `json:"rows"`
}

// Displays returns the display attribute of every row, in order.
func (q QueryTrace) Displays() []string {
	out := make([]string, len(q.Rows))
	for i, r := range q.Rows {
		out[i] = r.Display
	}
	return out
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion held.
	Pass bool `json:"pass"`

	// Trace contains one entry per resolved plan, in scenario order.
	// Used for assertions and golden comparison.
	Trace []QueryTrace `json:"trace"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []QueryTrace{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddQueryTrace appends a resolved plan to the trace.
func (r *Result) AddQueryTrace(res *engine.Result) {
	rows := res.Rows
	if rows == nil {
		rows = []engine.ResultEntity{}
	}
	r.Trace = append(r.Trace, QueryTrace{
		Plan:    res.Plan,
		QueryID: res.QueryID,
		Count:   len(rows),
		Rows:    rows,
	})
}

// Query returns the trace entry of the named plan.
func (r *Result) Query(plan string) (QueryTrace, bool) {
	for _, q := range r.Trace {
		if q.Plan == plan {
			return q, true
		}
	}
	return QueryTrace{}, false
}
