// Package engine resolves query plans against the Entity Store and the
// Relationship Index.
//
// ARCHITECTURE:
//
// Resolution is a breadth-first expansion of a path frontier:
//  1. Every start entity (in load order) that satisfies the predicates at
//     position 0 seeds the frontier.
//  2. Each hop replaces every path with one path per neighbor reached via
//     the index. A new path survives only if its entity satisfies every
//     predicate bound to its position, so failing branches are cut early.
//  3. Each surviving complete path yields one row: the entity at the
//     plan's output position.
//
// Without DISTINCT, an entity reached through several paths yields several
// rows, as a SQL join does. DISTINCT keeps the first occurrence of each
// entity id. Sorting happens after deduplication, the limit last.
//
// CONCURRENCY:
//
// The store and index are immutable after load, so an Engine holds no
// mutable state and Resolve is safe for concurrent use. ResolveAll fans
// plans out over a bounded errgroup.
//
// ERRORS:
//
// Plans are validated before traversal (InvalidPlan, TypeMismatch). An id
// the index yields that the store cannot resolve is an internal
// consistency failure (UnknownEntity): it is logged at error level and
// returned, never turned into an empty result. An empty result always
// means no matching data.
package engine
