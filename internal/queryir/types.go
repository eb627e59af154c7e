package queryir

import (
	"github.com/roach88/cinegraph/internal/index"
	"github.com/roach88/cinegraph/internal/model"
)

// Predicate is a filter condition evaluated against one entity.
//
// This is a sealed interface. Predicate types:
//   - Equals: field = literal (string or int)
//   - YearEquals: year(date field) = literal
//   - Between: low <= field <= high
//   - And: all predicates must be true
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Equals matches when the field equals Value. String comparison is exact
// and case-sensitive. A null field never matches.
type Equals struct {
	Field string
	Value model.Value
}

func (Equals) predicateNode() {}

// YearEquals matches when the year of a date field equals Year. A null
// date never matches.
type YearEquals struct {
	Field string
	Year  int
}

func (YearEquals) predicateNode() {}

// Between matches when Low <= field <= High. Both bounds are inclusive.
type Between struct {
	Field string
	Low   int64
	High  int64
}

func (Between) predicateNode() {}

// And is a conjunction. An empty And is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Hop traverses one indexed relationship.
type Hop struct {
	Rel index.Relationship
	Dir index.Direction
}

// Filter binds a predicate to a path position. Position 0 is the start
// entity, position i the entity reached by hop i.
type Filter struct {
	At        int
	Predicate Predicate
}

// SortMode selects the result ordering.
type SortMode string

const (
	// SortNone keeps traversal order: start entities in load order, then
	// neighbors in index order.
	SortNone SortMode = "none"

	// SortIdentity orders by display attribute, byte-wise, ties by id.
	SortIdentity SortMode = "identity"

	// SortCollated orders by display attribute under locale collation,
	// ties by id.
	SortCollated SortMode = "collated"
)

// ParseSortMode validates a sort mode name. The empty string is SortNone.
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(s) {
	case "", SortNone:
		return SortNone, nil
	case SortIdentity, SortCollated:
		return SortMode(s), nil
	}
	return "", newPlanError(CodeInvalidPlan, "unknown sort mode %q", s)
}

// Plan is a complete, typed query.
type Plan struct {
	// Name and Description identify plans loaded from files. Both are
	// optional for plans built in code.
	Name        string
	Description string

	Start    model.Kind
	Hops     []Hop
	Filters  []Filter
	Distinct bool
	Sort     SortMode

	// Output is the position whose entity each row projects. Default 0.
	Output int

	// Limit caps the row count after sorting. Zero means unlimited.
	Limit int
}

// Kinds returns the entity type at every position of the path, starting
// with Start. It fails with a *PlanError when the hop chain is broken.
func (p Plan) Kinds() ([]model.Kind, error) {
	if _, err := model.ParseKind(string(p.Start)); err != nil {
		return nil, newPlanError(CodeInvalidPlan, "start: %v", err)
	}
	kinds := make([]model.Kind, 0, len(p.Hops)+1)
	kinds = append(kinds, p.Start)
	for i, h := range p.Hops {
		from, to, err := h.Rel.Traverse(h.Dir)
		if err != nil {
			return nil, newPlanError(CodeInvalidPlan, "hop %d: %v", i+1, err)
		}
		if cur := kinds[len(kinds)-1]; from != cur {
			return nil, newPlanError(CodeInvalidPlan,
				"hop %d: %s %s starts at %s, but position %d is %s", i+1, h.Rel, h.Dir, from, i, cur)
		}
		kinds = append(kinds, to)
	}
	return kinds, nil
}

// OutputKind returns the entity type of the projected position.
func (p Plan) OutputKind() (model.Kind, error) {
	kinds, err := p.Kinds()
	if err != nil {
		return "", err
	}
	if p.Output < 0 || p.Output >= len(kinds) {
		return "", newPlanError(CodeInvalidPlan, "select position %d out of range [0, %d]", p.Output, len(kinds)-1)
	}
	return kinds[p.Output], nil
}
