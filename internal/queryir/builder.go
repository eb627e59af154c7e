package queryir

import (
	"slices"

	"github.com/roach88/cinegraph/internal/index"
	"github.com/roach88/cinegraph/internal/model"
)

// Builder assembles a Plan step by step. Build validates the result.
//
//	plan, err := queryir.NewPlan(model.KindActor).
//		Hop(index.ActorRole, index.Forward).
//		Hop(index.FilmRole, index.Reverse).
//		Where(2, queryir.Equals{Field: model.FieldYear, Value: model.Int(2015)}).
//		Build()
type Builder struct {
	plan Plan
}

// NewPlan starts a plan at the given entity type.
func NewPlan(start model.Kind) *Builder {
	return &Builder{plan: Plan{Start: start, Sort: SortNone}}
}

// Named sets the plan name used in errors and logs.
func (b *Builder) Named(name string) *Builder {
	b.plan.Name = name
	return b
}

// Hop appends a traversal of rel in dir.
func (b *Builder) Hop(rel index.Relationship, dir index.Direction) *Builder {
	b.plan.Hops = append(b.plan.Hops, Hop{Rel: rel, Dir: dir})
	return b
}

// Where binds pred to position at.
func (b *Builder) Where(at int, pred Predicate) *Builder {
	b.plan.Filters = append(b.plan.Filters, Filter{At: at, Predicate: pred})
	return b
}

// Distinct deduplicates rows by entity id.
func (b *Builder) Distinct() *Builder {
	b.plan.Distinct = true
	return b
}

// SortBy sets the result ordering.
func (b *Builder) SortBy(mode SortMode) *Builder {
	b.plan.Sort = mode
	return b
}

// Select projects the entity at position at instead of the start entity.
func (b *Builder) Select(at int) *Builder {
	b.plan.Output = at
	return b
}

// Limit caps the number of rows.
func (b *Builder) Limit(n int) *Builder {
	b.plan.Limit = n
	return b
}

// Build validates and returns the plan. The returned plan does not share
// slices with the builder.
func (b *Builder) Build() (Plan, error) {
	p := b.plan
	p.Hops = slices.Clone(p.Hops)
	p.Filters = slices.Clone(p.Filters)
	if err := Validate(p); err != nil {
		return Plan{}, err
	}
	return p, nil
}

// MustBuild is like Build but panics on error. For plans fixed at compile
// time.
func (b *Builder) MustBuild() Plan {
	p, err := b.Build()
	if err != nil {
		panic(err)
	}
	return p
}
