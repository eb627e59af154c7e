package engine

import (
	"fmt"

	"github.com/roach88/cinegraph/internal/model"
	"github.com/roach88/cinegraph/internal/queryir"
)

// Evaluate reports whether entity satisfies pred.
//
// Evaluate is pure. It fails with a TYPE_MISMATCH *queryir.PlanError when
// the entity has no such field or the field's kind does not support the
// predicate. Null fields never match and are not errors.
//
// Semantics:
//   - Equals: exact equality, case-sensitive for strings
//   - YearEquals: year of a date field
//   - Between: Low <= value <= High, inclusive
//   - And: conjunction, evaluated left to right with short-circuit; an
//     empty And is true
func Evaluate(entity model.Entity, pred queryir.Predicate) (bool, error) {
	switch p := pred.(type) {
	case queryir.Equals:
		v, err := field(entity, p.Field)
		if err != nil {
			return false, err
		}
		return equals(entity, p, v)

	case queryir.YearEquals:
		v, err := field(entity, p.Field)
		if err != nil {
			return false, err
		}
		switch d := v.(type) {
		case model.Null:
			return false, nil
		case model.Date:
			return d.Year == p.Year, nil
		}
		return false, mismatch("year extraction on %s.%s of kind %s", entity.Kind(), p.Field, model.KindOf(v))

	case queryir.Between:
		v, err := field(entity, p.Field)
		if err != nil {
			return false, err
		}
		switch n := v.(type) {
		case model.Null:
			return false, nil
		case model.Int:
			return int64(n) >= p.Low && int64(n) <= p.High, nil
		}
		return false, mismatch("range on %s.%s of kind %s", entity.Kind(), p.Field, model.KindOf(v))

	case queryir.And:
		for _, sub := range p.Predicates {
			ok, err := Evaluate(entity, sub)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
	return false, &queryir.PlanError{
		Code:    queryir.CodeInvalidPlan,
		Message: fmt.Sprintf("unsupported predicate %T", pred),
	}
}

func equals(entity model.Entity, p queryir.Equals, v model.Value) (bool, error) {
	if _, null := v.(model.Null); null {
		return false, nil
	}
	if model.KindOf(v) != model.KindOf(p.Value) {
		return false, mismatch("%s.%s is %s, compared to %s", entity.Kind(), p.Field, model.KindOf(v), model.KindOf(p.Value))
	}
	return v == p.Value, nil
}

func field(entity model.Entity, name string) (model.Value, error) {
	v, ok := entity.Field(name)
	if !ok {
		return nil, mismatch("%s has no field %q", entity.Kind(), name)
	}
	return v, nil
}

func mismatch(format string, args ...any) error {
	return &queryir.PlanError{Code: queryir.CodeTypeMismatch, Message: fmt.Sprintf(format, args...)}
}

// matchAll evaluates every predicate bound to one position.
func matchAll(entity model.Entity, preds []queryir.Predicate) (bool, error) {
	for _, p := range preds {
		ok, err := Evaluate(entity, p)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}
