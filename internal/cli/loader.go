package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/cinegraph/internal/compiler"
	"github.com/roach88/cinegraph/internal/dataset"
	"github.com/roach88/cinegraph/internal/index"
	"github.com/roach88/cinegraph/internal/queryir"
	"github.com/roach88/cinegraph/internal/store"
)

// LoadMode controls how errors are handled during plan loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the plans compiled from a directory.
type LoadResult struct {
	Plans []queryir.Plan
	Files []string // CUE files read, in order
}

// LoadError represents an error that occurred during plan loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Line returns the source line of the error, or 0.
func (e *LoadError) Line() int {
	if e.Pos.IsValid() {
		return e.Pos.Line()
	}
	return 0
}

// LoadPlans compiles the CUE plans under dir.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, every file and plan is compiled and all
// errors are returned. A nil result means the directory itself was unusable.
func LoadPlans(dir string, mode LoadMode) (*LoadResult, []error) {
	var errs []error

	// Verify directory exists
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("plans directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing plans directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	loaded, loadErrs := compiler.LoadDir(dir, mode == LoadModeCollectAll)
	for _, err := range loadErrs {
		errs = append(errs, convertLoadError(err))
	}
	if loaded == nil {
		return nil, errs
	}
	result := &LoadResult{Plans: loaded.Plans, Files: loaded.Files}

	// Check if we found anything
	if len(result.Plans) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("no plans found in %s", dir)})
	}

	return result, errs
}

// convertLoadError converts a compiler error to a LoadError with a CLI
// error code and position info.
func convertLoadError(err error) *LoadError {
	var (
		scanErr    *compiler.ScanError
		readErr    *compiler.ReadError
		dupErr     *compiler.DuplicatePlanError
		compileErr *compiler.CompileError
	)
	switch {
	case errors.Is(err, compiler.ErrNoCUEFiles):
		return &LoadError{Code: ErrCodeNoFiles, Message: err.Error()}
	case errors.As(err, &scanErr):
		return &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", scanErr.Err)}
	case errors.As(err, &readErr):
		return &LoadError{Code: ErrCodeReadFailed, Message: err.Error()}
	case errors.As(err, &dupErr):
		return &LoadError{Code: ErrCodeDuplicate, Message: err.Error()}
	case errors.As(err, &compileErr):
		return &LoadError{
			Code:    ErrCodeCompile,
			Message: compileMessage(err, compileErr),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    MapPlanErrorToCode(err),
		Message: err.Error(),
	}
}

// compileMessage drops the position from a CompileError's text, since
// LoadError prints it itself. Wrapping context such as the plan name is kept.
func compileMessage(err error, ce *compiler.CompileError) string {
	prefix := strings.TrimSuffix(err.Error(), ce.Error())
	return fmt.Sprintf("%s%s: %s", prefix, ce.Field, ce.Message)
}

// MapPlanErrorToCode maps a plan or query error to an error code.
func MapPlanErrorToCode(err error) string {
	switch {
	case queryir.IsTypeMismatch(err):
		return ErrCodeTypeMismatch
	case queryir.IsInvalidPlan(err):
		return ErrCodeInvalidPlan
	default:
		return ErrCodeGeneric
	}
}

// selectPlans returns the named plans in the given order, or all plans when
// names is empty.
func selectPlans(plans []queryir.Plan, names []string) ([]queryir.Plan, error) {
	if len(names) == 0 {
		return plans, nil
	}
	byName := make(map[string]queryir.Plan, len(plans))
	for _, p := range plans {
		byName[p.Name] = p
	}
	selected := make([]queryir.Plan, 0, len(names))
	for _, name := range names {
		p, ok := byName[name]
		if !ok {
			return nil, &LoadError{Code: ErrCodeUnknownPlan, Message: fmt.Sprintf("plan %q not found", name)}
		}
		selected = append(selected, p)
	}
	return selected, nil
}

// loadDataset reads the dataset into a store and builds its index.
func loadDataset(ctx context.Context, path string) (*store.Store, *index.Index, error) {
	if path == "" {
		return nil, nil, &LoadError{Code: ErrCodeDatasetFailed, Message: "no dataset given (use --dataset or CINEGRAPH_DATASET)"}
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("dataset not found: %s", path)}
	}

	st, err := dataset.LoadStore(ctx, path)
	if err != nil {
		return nil, nil, &LoadError{Code: ErrCodeDatasetFailed, Message: err.Error()}
	}
	idx, err := index.Build(st)
	if err != nil {
		return nil, nil, &LoadError{Code: ErrCodeDatasetFailed, Message: fmt.Sprintf("building index: %v", err)}
	}
	return st, idx, nil
}

// failLoad reports a loader error through the formatter with the given exit
// code.
func failLoad(f *OutputFormatter, exitCode int, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return f.Fail(exitCode, loadErr.Code, loadErr.Message, nil)
	}
	return f.Fail(exitCode, ErrCodeGeneric, err.Error(), nil)
}
