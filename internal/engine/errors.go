package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/cinegraph/internal/index"
	"github.com/roach88/cinegraph/internal/queryir"
	"github.com/roach88/cinegraph/internal/store"
)

// Sentinels matched with errors.Is against any error returned by Resolve.
var (
	ErrNotLoaded     = store.ErrNotLoaded
	ErrUnknownEntity = index.ErrUnknownEntity
	ErrTypeMismatch  = queryir.ErrTypeMismatch
	ErrInvalidPlan   = queryir.ErrInvalidPlan
)

// QueryErrorCode categorizes resolution failures.
type QueryErrorCode string

const (
	// ErrCodeNotLoaded indicates a query before the store was loaded.
	ErrCodeNotLoaded QueryErrorCode = "NOT_LOADED"

	// ErrCodeUnknownEntity indicates the index yielded an id the store does
	// not hold.
	ErrCodeUnknownEntity QueryErrorCode = "UNKNOWN_ENTITY"

	// ErrCodeTypeMismatch indicates a predicate on an incompatible field.
	ErrCodeTypeMismatch QueryErrorCode = "TYPE_MISMATCH"

	// ErrCodeInvalidPlan indicates a malformed plan.
	ErrCodeInvalidPlan QueryErrorCode = "INVALID_PLAN"

	// ErrCodeCanceled indicates the context ended between hops.
	ErrCodeCanceled QueryErrorCode = "CANCELED"
)

// QueryError represents a failed Resolve.
//
// QueryError includes structured fields for diagnostics. The underlying
// error is available through errors.Unwrap, so sentinel and *PlanError
// matching keeps working.
type QueryError struct {
	// Code identifies the error category.
	Code QueryErrorCode

	// QueryID identifies the failed Resolve call.
	QueryID string

	// Plan is the plan name, if any.
	Plan string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Plan != "" {
		return fmt.Sprintf("%s: %v (query=%s, plan=%s)", e.Code, e.Err, e.QueryID, e.Plan)
	}
	return fmt.Sprintf("%s: %v (query=%s)", e.Code, e.Err, e.QueryID)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsUnknownEntity returns true if the error is an index/store desync.
// Uses errors.As to handle wrapped errors.
func IsUnknownEntity(err error) bool {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Code == ErrCodeUnknownEntity
	}
	return errors.Is(err, ErrUnknownEntity)
}

// IsCallerError returns true for errors that the caller must fix in the
// plan (InvalidPlan and TypeMismatch).
func IsCallerError(err error) bool {
	return errors.Is(err, ErrInvalidPlan) || errors.Is(err, ErrTypeMismatch)
}

// newQueryError classifies err and wraps it with the query id.
func newQueryError(queryID, plan string, err error) *QueryError {
	code := ErrCodeInvalidPlan
	switch {
	case errors.Is(err, ErrNotLoaded):
		code = ErrCodeNotLoaded
	case errors.Is(err, ErrUnknownEntity), errors.Is(err, store.ErrNotFound):
		code = ErrCodeUnknownEntity
	case errors.Is(err, ErrTypeMismatch):
		code = ErrCodeTypeMismatch
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = ErrCodeCanceled
	}
	return &QueryError{Code: code, QueryID: queryID, Plan: plan, Err: err}
}
