package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/cinegraph/internal/index"
	"github.com/roach88/cinegraph/internal/model"
	"github.com/roach88/cinegraph/internal/queryir"
)

// SQLCompiler renders query plans as parameterized SQLite SELECTs over the
// dataset schema.
//
// Each position i of the plan gets alias t<i>; link tables get l<i>. Every
// hop becomes one or two INNER JOINs, every filter a WHERE conjunct. The
// query selects (id, display) of the output position.
//
// CRITICAL: All values are parameterized, never interpolated.
// CRITICAL: Every query has an ORDER BY with an id tiebreaker.
//
// Ordering follows the engine where SQL can express it. SortNone orders
// by the path (start id, then each hop's id or link rowid); with DISTINCT
// it orders by output id, since first-seen order is not expressible in a
// DISTINCT select. SortCollated falls back to COLLATE NOCASE.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a plan to SQL. Returns (sql, params, error).
// The plan is validated first.
func (c *SQLCompiler) Compile(plan queryir.Plan) (string, []any, error) {
	if err := queryir.Validate(plan); err != nil {
		return "", nil, err
	}
	kinds, err := plan.Kinds()
	if err != nil {
		return "", nil, err
	}

	out := tables[kinds[plan.Output]]
	outAlias := alias(plan.Output)

	var b strings.Builder
	b.WriteString("SELECT ")
	if plan.Distinct {
		b.WriteString("DISTINCT ")
	}
	fmt.Fprintf(&b, "%s.id, %s.%s FROM %s t0", outAlias, outAlias, out.display, tables[kinds[0]].name)

	pathOrder := []string{"t0.id"}
	for i, h := range plan.Hops {
		join, order, err := c.compileHop(h, i+1, kinds[i+1])
		if err != nil {
			return "", nil, fmt.Errorf("compile hop %d: %w", i+1, err)
		}
		b.WriteString(join)
		pathOrder = append(pathOrder, order)
	}

	var where []string
	var params []any
	for i, f := range plan.Filters {
		sql, p, err := c.compilePredicate(f.Predicate, alias(f.At), kinds[f.At])
		if err != nil {
			return "", nil, fmt.Errorf("compile filter %d: %w", i, err)
		}
		where = append(where, sql)
		params = append(params, p...)
	}
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}

	b.WriteString(" ORDER BY ")
	b.WriteString(c.orderBy(plan, outAlias, out.display, pathOrder))

	if plan.Limit > 0 {
		b.WriteString(" LIMIT ?")
		params = append(params, plan.Limit)
	}

	return b.String(), params, nil
}

func alias(pos int) string {
	return fmt.Sprintf("t%d", pos)
}

// compileHop renders the JOINs reaching position pos, and the path order
// key for that position.
func (c *SQLCompiler) compileHop(h queryir.Hop, pos int, to model.Kind) (string, string, error) {
	rel, ok := relations[h.Rel]
	if !ok {
		return "", "", fmt.Errorf("no storage for relationship %q", h.Rel)
	}
	from, cur := alias(pos-1), alias(pos)
	target := tables[to].name

	if rel.link == "" {
		// actor/film <-> role via role foreign key
		switch h.Dir {
		case index.Forward:
			return fmt.Sprintf(" JOIN %s %s ON %s.%s = %s.id", target, cur, cur, rel.leftKey, from), cur + ".id", nil
		case index.Reverse:
			return fmt.Sprintf(" JOIN %s %s ON %s.id = %s.%s", target, cur, cur, from, rel.leftKey), cur + ".id", nil
		}
		return "", "", fmt.Errorf("unknown direction %q", h.Dir)
	}

	link := fmt.Sprintf("l%d", pos)
	fromKey, toKey := rel.leftKey, rel.rightKey
	switch h.Dir {
	case index.Forward:
	case index.Reverse:
		fromKey, toKey = toKey, fromKey
	default:
		return "", "", fmt.Errorf("unknown direction %q", h.Dir)
	}
	sql := fmt.Sprintf(" JOIN %s %s ON %s.%s = %s.id JOIN %s %s ON %s.id = %s.%s",
		rel.link, link, link, fromKey, from,
		target, cur, cur, link, toKey)
	return sql, link + ".rowid", nil
}

// compilePredicate compiles a predicate bound to alias a of kind k.
// CRITICAL: Values are never interpolated - always ? placeholders.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate, a string, k model.Kind) (string, []any, error) {
	switch pred := p.(type) {
	case queryir.Equals:
		col, err := column(k, pred.Field)
		if err != nil {
			return "", nil, err
		}
		param, err := valueToParam(pred.Value)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("%s.%s = ?", a, col), []any{param}, nil

	case queryir.YearEquals:
		col, err := column(k, pred.Field)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("CAST(strftime('%%Y', %s.%s) AS INTEGER) = ?", a, col), []any{pred.Year}, nil

	case queryir.Between:
		col, err := column(k, pred.Field)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("%s.%s BETWEEN ? AND ?", a, col), []any{pred.Low, pred.High}, nil

	case queryir.And:
		if len(pred.Predicates) == 0 {
			return "1 = 1", nil, nil // Always true (vacuous truth)
		}
		var parts []string
		var params []any
		for _, sub := range pred.Predicates {
			sql, p, err := c.compilePredicate(sub, a, k)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, sql)
			params = append(params, p...)
		}
		return "(" + strings.Join(parts, " AND ") + ")", params, nil
	}
	return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
}

func (c *SQLCompiler) orderBy(plan queryir.Plan, outAlias, display string, pathOrder []string) string {
	switch plan.Sort {
	case queryir.SortIdentity:
		return fmt.Sprintf("%s.%s COLLATE BINARY, %s.id", outAlias, display, outAlias)
	case queryir.SortCollated:
		return fmt.Sprintf("%s.%s COLLATE NOCASE, %s.id", outAlias, display, outAlias)
	}
	if plan.Distinct {
		return outAlias + ".id"
	}
	return strings.Join(pathOrder, ", ")
}

func column(k model.Kind, field string) (string, error) {
	col, ok := tables[k].columns[field]
	if !ok {
		return "", fmt.Errorf("%s has no column for field %q", k, field)
	}
	return col, nil
}

// valueToParam converts a model.Value to a Go native SQL parameter.
func valueToParam(v model.Value) (any, error) {
	switch val := v.(type) {
	case model.String:
		return string(val), nil
	case model.Int:
		return int64(val), nil
	case model.Date:
		return val.String(), nil
	}
	return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
}
