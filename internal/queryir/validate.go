package queryir

import (
	"errors"
	"fmt"

	"github.com/roach88/cinegraph/internal/model"
)

// Validate checks a plan before any traversal and returns the first
// problem found as a *PlanError.
//
// Checks, in order:
//  1. Start is a known entity type.
//  2. Each hop starts at the type reached so far.
//  3. Filter positions and the select position are in range.
//  4. Each predicate field exists on the type at its position and its kind
//     supports the predicate (TYPE_MISMATCH otherwise).
//  5. Ranges have Low <= High.
//  6. Sort mode is known and Limit is not negative.
//
// Validate is a pure function.
func Validate(p Plan) error {
	err := validate(p)
	if err == nil {
		return nil
	}
	var pe *PlanError
	if errors.As(err, &pe) && pe.Plan == "" && p.Name != "" {
		pe.Plan = p.Name
	}
	return err
}

func validate(p Plan) error {
	kinds, err := p.Kinds()
	if err != nil {
		return err
	}
	last := len(kinds) - 1

	for i, f := range p.Filters {
		if f.At < 0 || f.At > last {
			return newPlanError(CodeInvalidPlan, "filter %d: position %d out of range [0, %d]", i, f.At, last)
		}
		if err := checkPredicate(kinds[f.At], f.Predicate); err != nil {
			var pe *PlanError
			if errors.As(err, &pe) {
				pe.Message = fmt.Sprintf("filter %d at %s: %s", i, kinds[f.At], pe.Message)
			}
			return err
		}
	}

	if p.Output < 0 || p.Output > last {
		return newPlanError(CodeInvalidPlan, "select position %d out of range [0, %d]", p.Output, last)
	}
	if _, err := ParseSortMode(string(p.Sort)); err != nil {
		return err
	}
	if p.Limit < 0 {
		return newPlanError(CodeInvalidPlan, "negative limit %d", p.Limit)
	}
	return nil
}

func checkPredicate(kind model.Kind, pred Predicate) error {
	switch pr := pred.(type) {
	case nil:
		return newPlanError(CodeInvalidPlan, "nil predicate")

	case Equals:
		spec, err := lookupField(kind, pr.Field)
		if err != nil {
			return err
		}
		vk := model.KindOf(pr.Value)
		if vk != model.KindString && vk != model.KindInt && vk != model.KindDate {
			return newPlanError(CodeTypeMismatch, "equals on %s needs a string, int or date value, got %s", pr.Field, vk)
		}
		if vk != spec.Kind {
			return newPlanError(CodeTypeMismatch, "field %s is %s, compared to %s", pr.Field, spec.Kind, vk)
		}
		return nil

	case YearEquals:
		spec, err := lookupField(kind, pr.Field)
		if err != nil {
			return err
		}
		if spec.Kind != model.KindDate {
			return newPlanError(CodeTypeMismatch, "year extraction needs a date field, %s is %s", pr.Field, spec.Kind)
		}
		return nil

	case Between:
		spec, err := lookupField(kind, pr.Field)
		if err != nil {
			return err
		}
		if spec.Kind != model.KindInt {
			return newPlanError(CodeTypeMismatch, "range needs a numeric field, %s is %s", pr.Field, spec.Kind)
		}
		if pr.Low > pr.High {
			return newPlanError(CodeInvalidPlan, "range on %s has low %d > high %d", pr.Field, pr.Low, pr.High)
		}
		return nil

	case And:
		for _, sub := range pr.Predicates {
			if err := checkPredicate(kind, sub); err != nil {
				return err
			}
		}
		return nil
	}
	return newPlanError(CodeInvalidPlan, "unsupported predicate %T", pred)
}

func lookupField(kind model.Kind, name string) (model.FieldSpec, error) {
	spec, ok := model.LookupField(kind, name)
	if !ok {
		return model.FieldSpec{}, newPlanError(CodeTypeMismatch, "%s has no field %q", kind, name)
	}
	return spec, nil
}
