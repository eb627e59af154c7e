// Package store provides the in-memory Entity Store for the film domain.
//
// The store holds every typed record (actors, directors, countries, films,
// roles) plus the film↔country and film↔director link records. It is
// populated exactly once by Load and is read-only afterwards.
//
// # Critical Patterns
//
// Single Load:
//   - Load is the only mutation. A second Load returns ErrAlreadyLoaded;
//     the store never merges or replaces a published dataset.
//   - Load is atomic: records are staged in a private snapshot and only
//     published when every integrity check passed. A failed Load leaves the
//     store unloaded.
//
// Identity:
//   - EntityIDs are assigned in record order starting at 1, unique across
//     all kinds. Record keys are the dataset's own per-kind keys and are
//     only used to resolve foreign keys during Load.
//
// Referential Integrity:
//   - Roles must reference an existing actor and film.
//   - Links must reference an existing film and country/director.
//   - Country names are unique, compared case-sensitively.
//   - Any violation aborts Load with a *LoadError.
//
// # Concurrency
//
// After Load returns, all read methods are safe for concurrent use without
// locking: the published snapshot is never mutated.
package store
