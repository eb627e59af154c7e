package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/cinegraph/internal/index"
	"github.com/roach88/cinegraph/internal/model"
	"github.com/roach88/cinegraph/internal/queryir"
)

// CompilePlan parses a CUE value into a validated queryir.Plan.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the plan struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`plan: films_2015: { start: "actor", ... }`)
//	p, err := CompilePlan(v.LookupPath(cue.ParsePath("plan.films_2015")))
//
// Structural problems (missing fields, wrong CUE types) are reported as
// *CompileError with the CUE position. Semantic problems (broken hop
// chains, fields the entity type does not have) come from queryir.Validate
// as *queryir.PlanError.
func CompilePlan(v cue.Value) (queryir.Plan, error) {
	if err := v.Err(); err != nil {
		return queryir.Plan{}, formatCUEError(err)
	}

	var p queryir.Plan

	// Parse plan name from struct label (the path selector)
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		p.Name = labels[len(labels)-1].String()
	}

	var err error
	if p.Description, err = optionalString(v, "description"); err != nil {
		return queryir.Plan{}, err
	}

	// Parse start (required)
	startVal := v.LookupPath(cue.ParsePath("start"))
	if !startVal.Exists() {
		return queryir.Plan{}, &CompileError{
			Field:   "start",
			Message: "start is required",
			Pos:     v.Pos(),
		}
	}
	start, err := startVal.String()
	if err != nil {
		return queryir.Plan{}, formatCUEError(err)
	}
	p.Start = model.Kind(start)

	if p.Hops, err = parseHops(v); err != nil {
		return queryir.Plan{}, err
	}

	// Field kinds in where clauses depend on the entity type at each
	// position. A broken chain is left for Validate to report.
	kinds, _ := p.Kinds()
	if p.Filters, err = parseWhere(v, kinds); err != nil {
		return queryir.Plan{}, err
	}

	if p.Distinct, err = optionalBool(v, "distinct"); err != nil {
		return queryir.Plan{}, err
	}

	sort, err := optionalString(v, "sort")
	if err != nil {
		return queryir.Plan{}, err
	}
	if p.Sort, err = queryir.ParseSortMode(sort); err != nil {
		return queryir.Plan{}, &CompileError{
			Field:   "sort",
			Message: fmt.Sprintf("unknown sort mode %q (want none, identity or collated)", sort),
			Pos:     v.LookupPath(cue.ParsePath("sort")).Pos(),
		}
	}

	if p.Output, err = optionalInt(v, "select"); err != nil {
		return queryir.Plan{}, err
	}
	if p.Limit, err = optionalInt(v, "limit"); err != nil {
		return queryir.Plan{}, err
	}

	if err := queryir.Validate(p); err != nil {
		return queryir.Plan{}, err
	}
	return p, nil
}

// parseHops parses the optional hops list. A hop's dir defaults to forward.
func parseHops(v cue.Value) ([]queryir.Hop, error) {
	hopsVal := v.LookupPath(cue.ParsePath("hops"))
	if !hopsVal.Exists() {
		return nil, nil
	}

	iter, err := hopsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var hops []queryir.Hop
	for iter.Next() {
		hopVal := iter.Value()

		relVal := hopVal.LookupPath(cue.ParsePath("rel"))
		if !relVal.Exists() {
			return nil, &CompileError{
				Field:   "hops",
				Message: fmt.Sprintf("hop %d: rel is required", len(hops)+1),
				Pos:     hopVal.Pos(),
			}
		}
		rel, err := relVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		r, err := index.ParseRelationship(rel)
		if err != nil {
			return nil, &CompileError{
				Field:   "hops",
				Message: fmt.Sprintf("hop %d: unknown relationship %q", len(hops)+1, rel),
				Pos:     relVal.Pos(),
			}
		}

		dir, err := optionalString(hopVal, "dir")
		if err != nil {
			return nil, err
		}
		switch index.Direction(dir) {
		case "":
			dir = string(index.Forward)
		case index.Forward, index.Reverse:
		default:
			return nil, &CompileError{
				Field:   "hops",
				Message: fmt.Sprintf("hop %d: direction must be forward or reverse, got %q", len(hops)+1, dir),
				Pos:     hopVal.LookupPath(cue.ParsePath("dir")).Pos(),
			}
		}

		hops = append(hops, queryir.Hop{Rel: r, Dir: index.Direction(dir)})
	}
	return hops, nil
}

// parseWhere parses the optional where list. Each clause names a position,
// a field and exactly one operator: eq, year or between.
func parseWhere(v cue.Value, kinds []model.Kind) ([]queryir.Filter, error) {
	whereVal := v.LookupPath(cue.ParsePath("where"))
	if !whereVal.Exists() {
		return nil, nil
	}

	iter, err := whereVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var filters []queryir.Filter
	for iter.Next() {
		clause := iter.Value()
		n := len(filters) + 1

		at, err := optionalInt(clause, "at")
		if err != nil {
			return nil, err
		}

		fieldVal := clause.LookupPath(cue.ParsePath("field"))
		if !fieldVal.Exists() {
			return nil, &CompileError{
				Field:   "where",
				Message: fmt.Sprintf("clause %d: field is required", n),
				Pos:     clause.Pos(),
			}
		}
		field, err := fieldVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}

		pred, err := parseOperator(clause, n, field, fieldKind(kinds, at, field))
		if err != nil {
			return nil, err
		}
		filters = append(filters, queryir.Filter{At: at, Predicate: pred})
	}
	return filters, nil
}

// fieldKind returns the declared kind of field at position at, or "" when
// either is unknown.
func fieldKind(kinds []model.Kind, at int, field string) model.ValueKind {
	if at < 0 || at >= len(kinds) {
		return ""
	}
	spec, ok := model.LookupField(kinds[at], field)
	if !ok {
		return ""
	}
	return spec.Kind
}

func parseOperator(clause cue.Value, n int, field string, kind model.ValueKind) (queryir.Predicate, error) {
	var ops []string
	for _, op := range []string{"eq", "year", "between"} {
		if clause.LookupPath(cue.ParsePath(op)).Exists() {
			ops = append(ops, op)
		}
	}
	if len(ops) != 1 {
		return nil, &CompileError{
			Field:   "where",
			Message: fmt.Sprintf("clause %d: exactly one of eq, year or between is required, got %v", n, ops),
			Pos:     clause.Pos(),
		}
	}

	opVal := clause.LookupPath(cue.ParsePath(ops[0]))
	switch ops[0] {
	case "eq":
		value, err := literal(opVal, kind)
		if err != nil {
			return nil, err
		}
		return queryir.Equals{Field: field, Value: value}, nil

	case "year":
		year, err := opVal.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return queryir.YearEquals{Field: field, Year: int(year)}, nil

	default:
		bounds, err := intList(opVal)
		if err != nil {
			return nil, err
		}
		if len(bounds) != 2 {
			return nil, &CompileError{
				Field:   "where",
				Message: fmt.Sprintf("clause %d: between takes [low, high], got %d values", n, len(bounds)),
				Pos:     opVal.Pos(),
			}
		}
		return queryir.Between{Field: field, Low: bounds[0], High: bounds[1]}, nil
	}
}

// literal converts an eq operand. Strings compared against a date field are
// parsed as YYYY-MM-DD.
func literal(v cue.Value, kind model.ValueKind) (model.Value, error) {
	switch v.Kind() {
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return model.Int(n), nil

	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if kind == model.KindDate {
			d, err := model.ParseDate(s)
			if err != nil {
				return nil, &CompileError{Field: "where", Message: err.Error(), Pos: v.Pos()}
			}
			return d, nil
		}
		return model.String(s), nil
	}

	return nil, &CompileError{
		Field:   "where",
		Message: fmt.Sprintf("eq operand must be a string or an int, got %s", v.Kind()),
		Pos:     v.Pos(),
	}
}

func intList(v cue.Value) ([]int64, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []int64
	for iter.Next() {
		n, err := iter.Value().Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, n)
	}
	return out, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", fieldError(field, f, err)
	}
	return s, nil
}

func optionalBool(v cue.Value, field string) (bool, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return false, nil
	}
	b, err := f.Bool()
	if err != nil {
		return false, fieldError(field, f, err)
	}
	return b, nil
}

func optionalInt(v cue.Value, field string) (int, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return 0, nil
	}
	n, err := f.Int64()
	if err != nil {
		return 0, fieldError(field, f, err)
	}
	return int(n), nil
}

// CompileError represents a compilation error with position info.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// fieldError reports a CUE type error on a named plan field.
func fieldError(field string, v cue.Value, err error) error {
	pos := v.Pos()
	if positions := errors.Positions(err); len(positions) > 0 {
		pos = positions[0]
	}
	return &CompileError{Field: field, Message: err.Error(), Pos: pos}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
