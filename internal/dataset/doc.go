// Package dataset turns external film datasets into store records.
//
// Two sources are supported:
//
//   - SQL dumps: a file of INSERT statements over the schema in schema.sql,
//     executed into a SQLite database (":memory:" unless a path is given)
//     and read back table by table, ordered by id.
//   - YAML documents: top-level lists countries, directors, actors, films
//     and roles. Films carry their country and director keys.
//
// Both produce records in the same order (countries, directors, actors,
// films, roles, film/country links, film/director links), so the same data
// loaded from either source receives the same entity ids and builds the
// same index.
//
// The SQLite database is also the execution target for plans rendered by
// package querysql; tests use it to cross-check the in-memory engine.
package dataset
