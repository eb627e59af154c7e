package store

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/roach88/cinegraph/internal/model"
)

// Store is the in-memory Entity Store.
// The zero value is not usable; create stores with New.
type Store struct {
	// mu serializes Load. Reads never take it.
	mu   sync.Mutex
	snap atomic.Pointer[snapshot]
}

// snapshot is the immutable published state of a loaded store.
type snapshot struct {
	entities map[model.EntityID]model.Entity
	byKind   map[model.Kind][]model.EntityID
	links    []Link
}

// New creates an empty, unloaded store.
func New() *Store {
	return &Store{}
}

// Loaded reports whether Load has completed successfully.
func (s *Store) Loaded() bool {
	return s.snap.Load() != nil
}

// Load ingests an ordered batch of records.
//
// Load runs in two passes so that records may reference entities appearing
// later in the same batch:
//  1. Assign an EntityID to every entity record, in batch order, and build
//     the per-kind key maps.
//  2. Resolve role foreign keys and film links against those key maps.
//
// Returns a *LoadError on any integrity violation, ErrAlreadyLoaded if the
// store was loaded before. On error nothing is published.
func (s *Store) Load(records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap.Load() != nil {
		return ErrAlreadyLoaded
	}

	snap, err := build(records)
	if err != nil {
		return err
	}

	s.snap.Store(snap)
	return nil
}

// keyMaps resolves dataset keys to assigned ids, one map per kind.
type keyMaps map[model.Kind]map[int64]model.EntityID

func build(records []Record) (*snapshot, error) {
	snap := &snapshot{
		entities: make(map[model.EntityID]model.Entity, len(records)),
		byKind:   make(map[model.Kind][]model.EntityID, len(model.Kinds)),
	}
	keys := make(keyMaps, len(model.Kinds))
	for _, k := range model.Kinds {
		keys[k] = make(map[int64]model.EntityID)
	}
	countryNames := make(map[string]int)

	// Pass 1: entities
	var next model.EntityID
	for i, rec := range records {
		kind, isEntity := rec.Kind.entityKind()
		if !isEntity {
			if rec.Kind != RecordFilmCountry && rec.Kind != RecordFilmDirector {
				return nil, newLoadError(ErrCodeUnknownKind, i, rec, "unknown record kind %q", rec.Kind)
			}
			continue
		}

		if _, dup := keys[kind][rec.Key]; dup {
			return nil, newLoadError(ErrCodeDuplicateKey, i, rec, "duplicate %s key %d", kind, rec.Key)
		}
		if rec.Name == "" && kind != model.KindRole {
			return nil, newLoadError(ErrCodeMissingAttribute, i, rec, "%s has no %s", kind, displayField(kind))
		}
		if kind == model.KindCountry {
			if prev, dup := countryNames[rec.Name]; dup {
				return nil, newLoadError(ErrCodeDuplicateCountry, i, rec,
					"country name %q already used by record %d", rec.Name, prev)
			}
			countryNames[rec.Name] = i
		}

		next++
		id := next
		keys[kind][rec.Key] = id
		snap.entities[id] = newEntity(id, kind, rec)
		snap.byKind[kind] = append(snap.byKind[kind], id)
	}

	// Pass 2: references
	type linkKey struct {
		kind  LinkKind
		film  model.EntityID
		other model.EntityID
	}
	seenLinks := make(map[linkKey]struct{})

	for i, rec := range records {
		switch rec.Kind {
		case RecordRole:
			role := snap.entities[keys[model.KindRole][rec.Key]].(*model.Role)
			actorID, ok := keys[model.KindActor][rec.ActorKey]
			if !ok {
				return nil, newLoadError(ErrCodeDanglingReference, i, rec, "actor key %d does not exist", rec.ActorKey)
			}
			filmID, ok := keys[model.KindFilm][rec.FilmKey]
			if !ok {
				return nil, newLoadError(ErrCodeDanglingReference, i, rec, "film key %d does not exist", rec.FilmKey)
			}
			role.ActorID = actorID
			role.FilmID = filmID

		case RecordFilmCountry, RecordFilmDirector:
			filmID, ok := keys[model.KindFilm][rec.FilmKey]
			if !ok {
				return nil, newLoadError(ErrCodeDanglingReference, i, rec, "film key %d does not exist", rec.FilmKey)
			}

			lk := LinkFilmCountry
			otherKind, otherKey := model.KindCountry, rec.CountryKey
			if rec.Kind == RecordFilmDirector {
				lk = LinkFilmDirector
				otherKind, otherKey = model.KindDirector, rec.DirectorKey
			}
			otherID, ok := keys[otherKind][otherKey]
			if !ok {
				return nil, newLoadError(ErrCodeDanglingReference, i, rec, "%s key %d does not exist", otherKind, otherKey)
			}

			k := linkKey{kind: lk, film: filmID, other: otherID}
			if _, dup := seenLinks[k]; dup {
				return nil, newLoadError(ErrCodeDuplicateLink, i, rec,
					"film key %d already linked to %s key %d", rec.FilmKey, otherKind, otherKey)
			}
			seenLinks[k] = struct{}{}
			snap.links = append(snap.links, Link{Kind: lk, FilmID: filmID, OtherID: otherID})
		}
	}

	return snap, nil
}

func newEntity(id model.EntityID, kind model.Kind, rec Record) model.Entity {
	switch kind {
	case model.KindActor:
		var birth *model.Date
		if rec.BirthDate != nil {
			d := *rec.BirthDate
			birth = &d
		}
		return &model.Actor{ID: id, Identity: rec.Name, BirthDate: birth}
	case model.KindDirector:
		return &model.Director{ID: id, Identity: rec.Name}
	case model.KindCountry:
		return &model.Country{ID: id, Name: rec.Name}
	case model.KindFilm:
		return &model.Film{ID: id, Title: rec.Name, Year: rec.Year}
	default:
		return &model.Role{ID: id, Character: rec.Name}
	}
}

func displayField(kind model.Kind) string {
	switch kind {
	case model.KindActor, model.KindDirector:
		return model.FieldIdentity
	case model.KindCountry:
		return model.FieldName
	case model.KindFilm:
		return model.FieldTitle
	}
	return model.FieldCharacter
}

func (s *Store) loaded() (*snapshot, error) {
	snap := s.snap.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// GetByID returns the entity of the given kind with the given id.
// Returns ErrNotFound (wrapped) if no such entity exists, including when the
// id belongs to an entity of another kind.
func (s *Store) GetByID(kind model.Kind, id model.EntityID) (model.Entity, error) {
	snap, err := s.loaded()
	if err != nil {
		return nil, err
	}
	e, ok := snap.entities[id]
	if !ok || e.Kind() != kind {
		return nil, fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return e, nil
}

// Lookup returns the entity with the given id, whatever its kind.
func (s *Store) Lookup(id model.EntityID) (model.Entity, error) {
	snap, err := s.loaded()
	if err != nil {
		return nil, err
	}
	e, ok := snap.entities[id]
	if !ok {
		return nil, fmt.Errorf("entity %d: %w", id, ErrNotFound)
	}
	return e, nil
}

// IDs returns the ids of every entity of a kind in load order.
// The returned slice is a copy.
func (s *Store) IDs(kind model.Kind) ([]model.EntityID, error) {
	snap, err := s.loaded()
	if err != nil {
		return nil, err
	}
	return slices.Clone(snap.byKind[kind]), nil
}

// Count returns the number of entities of a kind.
func (s *Store) Count(kind model.Kind) (int, error) {
	snap, err := s.loaded()
	if err != nil {
		return 0, err
	}
	return len(snap.byKind[kind]), nil
}

// Links returns every film link in load order. The returned slice is a copy.
func (s *Store) Links() ([]Link, error) {
	snap, err := s.loaded()
	if err != nil {
		return nil, err
	}
	return slices.Clone(snap.links), nil
}

// Stats summarizes a loaded store.
type Stats struct {
	Entities map[model.Kind]int `json:"entities"`
	Links    map[LinkKind]int   `json:"links"`
}

// Stats returns entity and link counts.
func (s *Store) Stats() (Stats, error) {
	snap, err := s.loaded()
	if err != nil {
		return Stats{}, err
	}
	st := Stats{
		Entities: make(map[model.Kind]int, len(model.Kinds)),
		Links:    map[LinkKind]int{LinkFilmCountry: 0, LinkFilmDirector: 0},
	}
	for _, k := range model.Kinds {
		st.Entities[k] = len(snap.byKind[k])
	}
	for _, l := range snap.links {
		st.Links[l.Kind]++
	}
	return st, nil
}
