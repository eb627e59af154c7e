// Package harness provides conformance testing for query plans.
//
// A scenario names a dataset, a directory of CUE plans and a list of
// assertions over the rows each plan returns. The harness loads the
// dataset into a fresh store, resolves the plans through the engine and
// evaluates the assertions.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	dataset: ../datasets/films.yaml
//	plans: ../plans
//	queries: [all_actors, actors_in_2015_films]
//	query_id: q-golden
//	assertions:
//	  - type: count
//	    plan: all_actors
//	    count: 16
//	  - type: first
//	    plan: all_actors
//	    display: "A.J. Danna"
//	  - type: matches_sql
//	    plan: actors_in_2015_films
//
// Dataset and plan paths are relative to the scenario file.
//
// # Assertion Types
//
//   - count: the plan returns exactly N rows
//   - first: the first row has the given display
//   - contains: each listed display appears among the rows
//   - rows: the displays equal the list, in order
//   - subset: every returned entity is also returned by another plan
//   - matches_sql: SQLite running the rendered plan agrees row for row
//
// # Deterministic Testing
//
// Every result carries the scenario's fixed query id (query_id, or
// DefaultQueryID), and entity ids follow dataset record order, so traces
// are identical across runs and can be compared against golden files.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/reference.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
