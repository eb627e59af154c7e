// Package queryir defines the typed query plans resolved by the engine.
//
// A plan is a value, not a query string. It names a start entity type, an
// explicit list of hops over indexed relationships, predicates bound to
// positions on the path, and the projection applied to matching paths:
//
//	Plan{
//	  Start: model.KindActor,
//	  Hops: []Hop{
//	    {Rel: index.ActorRole, Dir: index.Forward},  // position 1: role
//	    {Rel: index.FilmRole, Dir: index.Reverse},   // position 2: film
//	    {Rel: index.FilmCountry, Dir: index.Forward}, // position 3: country
//	  },
//	  Filters: []Filter{
//	    {At: 2, Predicate: YearEquals{...}},
//	    {At: 3, Predicate: Equals{Field: "name", Value: model.String("France")}},
//	  },
//	}
//
// is the plan form of
//
//	SELECT a FROM actor a JOIN a.roles r JOIN r.film f JOIN f.countries c
//	WHERE f.year = 2017 AND c.name = 'France'
//
// Position 0 is the start entity; position i is the entity reached by hop
// i. The same plan can be rendered as SQL (package querysql) or resolved in
// memory (package engine).
//
// SEALED INTERFACES:
//
// Predicate is sealed with a marker method. Only Equals, YearEquals,
// Between and And implement it, so evaluators and SQL backends can switch
// exhaustively:
//
//	switch p := pred.(type) {
//	case Equals:
//	case YearEquals:
//	case Between:
//	case And:
//	}
//
// VALIDATION:
//
// Plans are checked before any traversal (Validate, Builder.Build). A hop
// must start at the type reached so far, positions must be in range, every
// predicate field must exist on the type at its position with a compatible
// kind, and ranges must have Low <= High. Failures are *PlanError values
// with code INVALID_PLAN or TYPE_MISMATCH.
package queryir
