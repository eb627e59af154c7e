package compiler

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/cinegraph/internal/queryir"
)

// PlansField is the top-level CUE field that holds plan definitions.
const PlansField = "plan"

// FindCUEFiles returns every .cue file under dir, recursively, in lexical
// order.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".cue") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

// CompileFile compiles one CUE source and returns the plans declared under
// its plan field, in declaration order. Every plan is compiled; the
// returned errors hold one entry per plan that failed.
func CompileFile(ctx *cue.Context, filename string, src []byte) ([]queryir.Plan, []error) {
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, []error{formatCUEError(err)}
	}

	plansVal := v.LookupPath(cue.ParsePath(PlansField))
	if !plansVal.Exists() {
		return nil, nil
	}

	iter, err := plansVal.Fields()
	if err != nil {
		return nil, []error{formatCUEError(err)}
	}

	var (
		plans []queryir.Plan
		errs  []error
	)
	for iter.Next() {
		p, err := CompilePlan(iter.Value())
		if err != nil {
			errs = append(errs, fmt.Errorf("plan %s: %w", iter.Label(), err))
			continue
		}
		plans = append(plans, p)
	}
	return plans, errs
}

// ErrNoCUEFiles is returned when a plans directory holds no .cue files.
var ErrNoCUEFiles = errors.New("no CUE files found")

// ScanError reports a plans directory that could not be walked.
type ScanError struct {
	Dir string
	Err error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan plans directory %s: %v", e.Dir, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// ReadError reports a plan file that could not be read.
type ReadError struct {
	File string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.File, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// DuplicatePlanError reports a plan name declared in two files.
type DuplicatePlanError struct {
	Name   string
	First  string // file declaring the plan first
	Second string
}

func (e *DuplicatePlanError) Error() string {
	return fmt.Sprintf("plan %q declared in both %s and %s", e.Name, e.First, e.Second)
}

// DirResult holds the plans compiled from a directory.
type DirResult struct {
	Plans []queryir.Plan // file order, then declaration order
	Files []string       // .cue files read, in order
}

// LoadDir compiles every plan in the .cue files under dir. Plan names must
// be unique across the directory; a repeated name is a *DuplicatePlanError
// and the later plan is dropped.
//
// With collectAll false LoadDir returns at the first error. Otherwise every
// file and plan is compiled and all errors are returned together. A nil
// result means the directory could not be scanned or holds no .cue files.
func LoadDir(dir string, collectAll bool) (*DirResult, []error) {
	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&ScanError{Dir: dir, Err: err}}
	}
	if len(files) == 0 {
		return nil, []error{fmt.Errorf("%w in %s", ErrNoCUEFiles, dir)}
	}

	ctx := cuecontext.New()
	result := &DirResult{Files: files}
	seen := make(map[string]string)
	var errs []error
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			errs = append(errs, &ReadError{File: file, Err: err})
			if !collectAll {
				return result, errs
			}
			continue
		}

		compiled, compileErrs := CompileFile(ctx, file, src)
		if len(compileErrs) > 0 {
			if !collectAll {
				return result, compileErrs[:1]
			}
			errs = append(errs, compileErrs...)
		}

		for _, p := range compiled {
			if prev, dup := seen[p.Name]; dup {
				errs = append(errs, &DuplicatePlanError{Name: p.Name, First: prev, Second: file})
				if !collectAll {
					return result, errs
				}
				continue
			}
			seen[p.Name] = file
			result.Plans = append(result.Plans, p)
		}
	}
	return result, errs
}

// LoadPlans compiles every plan in the .cue files under dir and fails on
// the first error.
func LoadPlans(dir string) ([]queryir.Plan, error) {
	result, errs := LoadDir(dir, false)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return result.Plans, nil
}
