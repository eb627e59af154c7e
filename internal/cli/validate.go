package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationError is one problem found in a plans directory.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Plans  []string          `json:"plans,omitempty"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [plans-dir]",
		Short: "Compile and validate plans without resolving them",
		Long: `Compile CUE plan files and validate every plan without loading a dataset.

Reports syntax errors, unknown relationships, broken hop chains, filters
at missing positions and predicates on fields the entity type lacks.
Every file is checked; all errors are reported, not only the first.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) > 0 {
				dir = args[0]
			} else if rootOpts.Config != nil {
				dir = rootOpts.Config.Plans
			}
			return runValidate(rootOpts, dir, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, plansDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	if plansDir == "" {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "no plans directory given", nil)
	}

	loadResult, loadErrors := LoadPlans(plansDir, LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil {
		return failLoad(formatter, ExitCommandError, loadErrors[0])
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", len(loadResult.Files), plansDir)

	if len(loadErrors) > 0 {
		return outputValidationErrors(formatter, toValidationErrors(loadErrors))
	}

	names := make([]string, len(loadResult.Plans))
	for i, p := range loadResult.Plans {
		names[i] = p.Name
		formatter.VerboseLog("Validated plan: %s", p.Name)
	}
	return outputValidateSuccess(formatter, names)
}

func toValidationErrors(errs []error) []ValidationError {
	out := make([]ValidationError, 0, len(errs))
	for _, err := range errs {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			out = append(out, ValidationError{
				Code:    loadErr.Code,
				Message: loadErr.Message,
				File:    loadErr.Pos.Filename(),
				Line:    loadErr.Line(),
			})
			continue
		}
		out = append(out, ValidationError{Code: ErrCodeGeneric, Message: err.Error()})
	}
	return out
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, plans []string) error {
	if formatter.IsJSON() {
		return formatter.Success(ValidationResult{Valid: true, Plans: plans})
	}

	fmt.Fprintf(formatter.Writer, "✓ All plans valid (%d)\n", len(plans))
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []ValidationError) error {
	if formatter.IsJSON() {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Errors: errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := formatter.encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s:%d\n", err.File, err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
