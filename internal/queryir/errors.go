package queryir

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPlan matches any *PlanError with CodeInvalidPlan.
	ErrInvalidPlan = errors.New("invalid plan")

	// ErrTypeMismatch matches any *PlanError with CodeTypeMismatch.
	ErrTypeMismatch = errors.New("type mismatch")
)

// PlanErrorCode categorizes plan validation failures.
type PlanErrorCode string

const (
	// CodeInvalidPlan indicates a malformed hop chain, position, sort mode
	// or range.
	CodeInvalidPlan PlanErrorCode = "INVALID_PLAN"

	// CodeTypeMismatch indicates a predicate on a missing field or a field
	// whose kind does not support it.
	CodeTypeMismatch PlanErrorCode = "TYPE_MISMATCH"
)

// PlanError reports why a plan cannot be resolved.
type PlanError struct {
	Code    PlanErrorCode
	Plan    string // plan name, when known
	Message string
}

func (e *PlanError) Error() string {
	if e.Plan != "" {
		return fmt.Sprintf("%s: plan %s: %s", e.Code, e.Plan, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is lets errors.Is match a PlanError against ErrInvalidPlan or
// ErrTypeMismatch.
func (e *PlanError) Is(target error) bool {
	switch target {
	case ErrInvalidPlan:
		return e.Code == CodeInvalidPlan
	case ErrTypeMismatch:
		return e.Code == CodeTypeMismatch
	}
	return false
}

// IsTypeMismatch reports whether err is a type mismatch.
func IsTypeMismatch(err error) bool {
	return errors.Is(err, ErrTypeMismatch)
}

// IsInvalidPlan reports whether err is an invalid plan error.
func IsInvalidPlan(err error) bool {
	return errors.Is(err, ErrInvalidPlan)
}

func newPlanError(code PlanErrorCode, format string, args ...any) *PlanError {
	return &PlanError{Code: code, Message: fmt.Sprintf(format, args...)}
}
