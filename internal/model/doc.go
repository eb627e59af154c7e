// Package model defines the entity types of the film domain and the typed
// attribute values that predicates compare against.
//
// ENTITIES:
//
//	Actor    identity, birth_date (nullable)
//	Director identity
//	Country  name (unique, case-sensitive)
//	Film     title, year
//	Role     character, plus its own Actor and Film references
//
// Role is the join entity between Actor and Film. Every other relationship
// (film↔country, film↔director) lives only in the relationship index; the
// entity structs carry attributes, not neighbor lists.
//
// SEALED VALUES:
//
// Value is a sealed interface. Only String, Int, Date and Null implement it,
// which lets the predicate evaluator switch exhaustively on attribute kinds:
//
//	switch v := value.(type) {
//	case model.String:
//	case model.Int:
//	case model.Date:
//	case model.Null:
//	}
//
// Identifiers (EntityID) are assigned by the store at load time and are
// unique across all entity kinds.
package model
