// Package index derives the bidirectional Relationship Index from a loaded
// store.
//
// The index is built once, eagerly, and is immutable afterwards. It holds
// identifiers only; entity lifetime belongs to the store.
package index

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strconv"

	"github.com/roach88/cinegraph/internal/model"
	"github.com/roach88/cinegraph/internal/store"
)

var (
	// ErrUnknownEntity is returned for an id that is not in the store.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrInvalidRelationship is returned when an entity is not an endpoint
	// of the requested relationship, or the relationship kind is unknown.
	ErrInvalidRelationship = errors.New("invalid relationship")
)

// Relationship names an indexed relationship kind.
type Relationship string

const (
	ActorRole    Relationship = "actor_role"
	FilmRole     Relationship = "film_role"
	FilmCountry  Relationship = "film_country"
	FilmDirector Relationship = "film_director"
)

// Relationships lists every relationship kind in a stable order.
var Relationships = []Relationship{ActorRole, FilmRole, FilmCountry, FilmDirector}

// Direction selects which way a relationship is traversed.
type Direction string

const (
	// Forward goes from the relationship's left endpoint to its right one.
	Forward Direction = "forward"
	// Reverse goes from the right endpoint to the left one.
	Reverse Direction = "reverse"
)

// ParseRelationship validates a relationship name.
func ParseRelationship(s string) (Relationship, error) {
	for _, r := range Relationships {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: unknown relationship %q", ErrInvalidRelationship, s)
}

// Endpoints returns the left and right entity kinds of a relationship.
func (r Relationship) Endpoints() (left, right model.Kind, ok bool) {
	switch r {
	case ActorRole:
		return model.KindActor, model.KindRole, true
	case FilmRole:
		return model.KindFilm, model.KindRole, true
	case FilmCountry:
		return model.KindFilm, model.KindCountry, true
	case FilmDirector:
		return model.KindFilm, model.KindDirector, true
	}
	return "", "", false
}

// Traverse returns the source and target kinds of a hop over r in dir.
func (r Relationship) Traverse(dir Direction) (from, to model.Kind, err error) {
	left, right, ok := r.Endpoints()
	if !ok {
		return "", "", fmt.Errorf("%w: unknown relationship %q", ErrInvalidRelationship, r)
	}
	switch dir {
	case Forward:
		return left, right, nil
	case Reverse:
		return right, left, nil
	}
	return "", "", fmt.Errorf("%w: unknown direction %q", ErrInvalidRelationship, dir)
}

// adjacency maps an id to its ordered neighbor list.
type adjacency map[model.EntityID][]model.EntityID

// Index is the Relationship Index.
type Index struct {
	store *store.Store
	edges map[Relationship]map[Direction]adjacency
}

// Build derives the index from a fully loaded store.
//
// Neighbor lists are ordered by load order of the underlying role or link
// records, so building twice from the same store yields identical indexes.
// Construction is O(total relationship records).
func Build(s *store.Store) (*Index, error) {
	if !s.Loaded() {
		return nil, store.ErrNotLoaded
	}

	idx := &Index{
		store: s,
		edges: make(map[Relationship]map[Direction]adjacency, len(Relationships)),
	}
	for _, r := range Relationships {
		idx.edges[r] = map[Direction]adjacency{
			Forward: make(adjacency),
			Reverse: make(adjacency),
		}
	}

	roleIDs, err := s.IDs(model.KindRole)
	if err != nil {
		return nil, err
	}
	for _, id := range roleIDs {
		e, err := s.Lookup(id)
		if err != nil {
			return nil, fmt.Errorf("build index: %w", err)
		}
		role, ok := e.(*model.Role)
		if !ok {
			return nil, fmt.Errorf("build index: entity %d is %s, not role", id, e.Kind())
		}
		idx.add(ActorRole, role.ActorID, role.ID)
		idx.add(FilmRole, role.FilmID, role.ID)
	}

	links, err := s.Links()
	if err != nil {
		return nil, err
	}
	for _, l := range links {
		switch l.Kind {
		case store.LinkFilmCountry:
			idx.add(FilmCountry, l.FilmID, l.OtherID)
		case store.LinkFilmDirector:
			idx.add(FilmDirector, l.FilmID, l.OtherID)
		}
	}

	return idx, nil
}

func (idx *Index) add(r Relationship, left, right model.EntityID) {
	fwd := idx.edges[r][Forward]
	fwd[left] = append(fwd[left], right)
	rev := idx.edges[r][Reverse]
	rev[right] = append(rev[right], left)
}

// Neighbors returns the ids related to id through r. The direction is
// chosen from the entity's kind. The sequence is empty when there are no
// neighbors, including when the entity is not an endpoint of r. An id
// absent from the store yields ErrUnknownEntity; a relationship name that
// is not indexed yields ErrInvalidRelationship.
func (idx *Index) Neighbors(id model.EntityID, r Relationship) (iter.Seq[model.EntityID], error) {
	e, err := idx.store.Lookup(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}
	left, right, ok := r.Endpoints()
	if !ok {
		return nil, fmt.Errorf("%w: unknown relationship %q", ErrInvalidRelationship, r)
	}
	switch e.Kind() {
	case left:
		return idx.seq(r, Forward, id), nil
	case right:
		return idx.seq(r, Reverse, id), nil
	}
	return emptySeq, nil
}

func emptySeq(func(model.EntityID) bool) {}

// Step returns the ids reached from id by traversing r in dir. The entity
// must be of the hop's source kind.
func (idx *Index) Step(id model.EntityID, r Relationship, dir Direction) (iter.Seq[model.EntityID], error) {
	from, _, err := r.Traverse(dir)
	if err != nil {
		return nil, err
	}
	e, err := idx.store.Lookup(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}
	if e.Kind() != from {
		return nil, fmt.Errorf("%w: %s %s starts at %s, got %s %d", ErrInvalidRelationship, r, dir, from, e.Kind(), id)
	}
	return idx.seq(r, dir, id), nil
}

func (idx *Index) seq(r Relationship, dir Direction, id model.EntityID) iter.Seq[model.EntityID] {
	ids := idx.edges[r][dir][id]
	return func(yield func(model.EntityID) bool) {
		for _, n := range ids {
			if !yield(n) {
				return
			}
		}
	}
}

// Degree returns the number of neighbors of id through r in dir.
func (idx *Index) Degree(id model.EntityID, r Relationship, dir Direction) int {
	if m, ok := idx.edges[r][dir]; ok {
		return len(m[id])
	}
	return 0
}

// Digest returns a SHA-256 over a canonical listing of every adjacency
// list. Two indexes with identical neighbor sets and orders have equal
// digests.
func (idx *Index) Digest() string {
	h := sha256.New()
	var buf []byte
	for _, r := range Relationships {
		for _, dir := range []Direction{Forward, Reverse} {
			adj := idx.edges[r][dir]
			keys := make([]model.EntityID, 0, len(adj))
			for k := range adj {
				keys = append(keys, k)
			}
			slices.Sort(keys)

			for _, k := range keys {
				buf = buf[:0]
				buf = append(buf, string(r)...)
				buf = append(buf, '/')
				buf = append(buf, string(dir)...)
				buf = append(buf, ' ')
				buf = strconv.AppendInt(buf, int64(k), 10)
				buf = append(buf, ':')
				for i, n := range adj[k] {
					if i > 0 {
						buf = append(buf, ',')
					}
					buf = strconv.AppendInt(buf, int64(n), 10)
				}
				buf = append(buf, '\n')
				h.Write(buf)
			}
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
