package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// DefaultQueryID stamps every result when a scenario does not set query_id.
const DefaultQueryID = "test-query-default"

// Scenario defines a query conformance scenario.
// A scenario loads a dataset, resolves a set of CUE plans against it and
// asserts on the resulting rows.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Dataset is the path of a .yaml or .sql dataset file.
	// Relative paths are resolved against the scenario's base path.
	Dataset string `yaml:"dataset"`

	// Plans is the directory holding the CUE plan files.
	// Relative paths are resolved against the scenario's base path.
	Plans string `yaml:"plans"`

	// Queries lists the plans to resolve, in order. Empty means every plan
	// found in Plans.
	Queries []string `yaml:"queries,omitempty"`

	// Assertions validate the resolved rows.
	// Supported types: count, first, contains, rows, subset, matches_sql
	Assertions []Assertion `yaml:"assertions"`

	// QueryID is an optional fixed query id for deterministic output.
	// If empty, defaults to DefaultQueryID.
	QueryID string `yaml:"query_id,omitempty"`

	// file is the path the scenario was loaded from, if any.
	file string
}

// GoldenPath returns the golden file of a scenario: golden/{name}.golden
// next to the scenario file, or under GoldenDir for scenarios built in code.
func (s *Scenario) GoldenPath() string {
	return filepath.Join(s.goldenDir(), s.Name+".golden")
}

func (s *Scenario) goldenDir() string {
	if s.file == "" {
		return GoldenDir
	}
	return filepath.Join(filepath.Dir(s.file), "golden")
}

// Assertion validates the rows of one plan.
type Assertion struct {
	// Type specifies the assertion type:
	// - "count": the plan returns exactly Count rows
	// - "first": the first row's display is Display
	// - "contains": every entry of Displays appears among the rows
	// - "rows": the row displays equal Displays, in order
	// - "subset": every row id also appears in the rows of plan Of
	// - "matches_sql": SQLite executing the rendered plan returns the same
	//   displays in the same order
	Type string `yaml:"type"`

	// Plan names the plan whose rows are checked.
	Plan string `yaml:"plan"`

	// Count is the expected row count (used by count). A pointer so that an
	// expected empty result can be told apart from a missing value.
	Count *int `yaml:"count,omitempty"`

	// Display is the expected first display (used by first).
	Display string `yaml:"display,omitempty"`

	// Displays are the expected displays (used by contains and rows).
	Displays []string `yaml:"displays,omitempty"`

	// Of names the enclosing plan (used by subset).
	Of string `yaml:"of,omitempty"`
}

// Assertion type constants.
const (
	AssertCount      = "count"
	AssertFirst      = "first"
	AssertContains   = "contains"
	AssertRows       = "rows"
	AssertSubset     = "subset"
	AssertMatchesSQL = "matches_sql"
)

// LoadScenario reads and parses a scenario YAML file.
// Dataset and plan paths are resolved relative to the scenario file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving dataset and plan paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve paths relative to base path BEFORE validation
	scenario.Dataset = resolvePath(basePath, scenario.Dataset)
	scenario.Plans = resolvePath(basePath, scenario.Plans)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	scenario.file = path
	return &scenario, nil
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) || base == "" {
		return p
	}
	return filepath.Join(base, p)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Dataset == "" {
		return fmt.Errorf("dataset is required")
	}
	if _, err := os.Stat(s.Dataset); os.IsNotExist(err) {
		return fmt.Errorf("dataset file not found: %s", s.Dataset)
	}

	if s.Plans == "" {
		return fmt.Errorf("plans directory is required")
	}
	if info, err := os.Stat(s.Plans); err != nil || !info.IsDir() {
		return fmt.Errorf("plans directory not found: %s", s.Plans)
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, q := range s.Queries {
		if q == "" {
			return fmt.Errorf("queries[%d]: plan name is empty", i)
		}
	}

	// Validate assertions
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, s.Queries); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
// When the scenario restricts its queries, every plan an assertion names
// must be among them.
func validateAssertion(index int, a *Assertion, queries []string) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Plan == "" {
		return fmt.Errorf("assertions[%d]: plan is required", index)
	}

	switch a.Type {
	case AssertCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for count", index)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertFirst:
		if a.Display == "" {
			return fmt.Errorf("assertions[%d]: display is required for first", index)
		}
	case AssertContains:
		if len(a.Displays) == 0 {
			return fmt.Errorf("assertions[%d]: displays list is required for contains", index)
		}
	case AssertRows:
		if a.Displays == nil {
			return fmt.Errorf("assertions[%d]: displays list is required for rows (use [] for no rows)", index)
		}
	case AssertSubset:
		if a.Of == "" {
			return fmt.Errorf("assertions[%d]: of is required for subset", index)
		}
	case AssertMatchesSQL:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if len(queries) > 0 {
		for _, plan := range []string{a.Plan, a.Of} {
			if plan != "" && !slices.Contains(queries, plan) {
				return fmt.Errorf("assertions[%d]: plan %q is not in queries", index, plan)
			}
		}
	}

	return nil
}
