package model

import "fmt"

// EntityID identifies an entity. IDs are assigned by the store at load time,
// start at 1 and are unique across every entity kind.
type EntityID int64

// Kind names an entity type.
type Kind string

const (
	KindActor    Kind = "actor"
	KindDirector Kind = "director"
	KindCountry  Kind = "country"
	KindFilm     Kind = "film"
	KindRole     Kind = "role"
)

// Kinds lists every entity kind in a stable order.
var Kinds = []Kind{KindActor, KindDirector, KindCountry, KindFilm, KindRole}

// ParseKind validates an entity kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown entity kind %q", s)
}

// Entity is implemented by every record held in the store.
type Entity interface {
	EntityID() EntityID
	Kind() Kind

	// Display returns the identity/display attribute (identity, name,
	// title or character).
	Display() string

	// Field returns the named attribute. The boolean is false when the
	// entity kind has no such field.
	Field(name string) (Value, bool)
}

// Field names.
const (
	FieldIdentity  = "identity"
	FieldBirthDate = "birth_date"
	FieldName      = "name"
	FieldTitle     = "title"
	FieldYear      = "year"
	FieldCharacter = "character"
)

// Actor is a performer. Identity strings are not unique.
type Actor struct {
	ID        EntityID
	Identity  string
	BirthDate *Date
}

func (a *Actor) EntityID() EntityID { return a.ID }
func (a *Actor) Kind() Kind         { return KindActor }
func (a *Actor) Display() string    { return a.Identity }

func (a *Actor) Field(name string) (Value, bool) {
	switch name {
	case FieldIdentity:
		return String(a.Identity), true
	case FieldBirthDate:
		return OptionalDate(a.BirthDate), true
	}
	return nil, false
}

// Director directs films. Identity strings are not unique.
type Director struct {
	ID       EntityID
	Identity string
}

func (d *Director) EntityID() EntityID { return d.ID }
func (d *Director) Kind() Kind         { return KindDirector }
func (d *Director) Display() string    { return d.Identity }

func (d *Director) Field(name string) (Value, bool) {
	if name == FieldIdentity {
		return String(d.Identity), true
	}
	return nil, false
}

// Country is a film's country of origin, keyed by its exact name.
type Country struct {
	ID   EntityID
	Name string
}

func (c *Country) EntityID() EntityID { return c.ID }
func (c *Country) Kind() Kind         { return KindCountry }
func (c *Country) Display() string    { return c.Name }

func (c *Country) Field(name string) (Value, bool) {
	if name == FieldName {
		return String(c.Name), true
	}
	return nil, false
}

// Film is a released film.
type Film struct {
	ID    EntityID
	Title string
	Year  int
}

func (f *Film) EntityID() EntityID { return f.ID }
func (f *Film) Kind() Kind         { return KindFilm }
func (f *Film) Display() string    { return f.Title }

func (f *Film) Field(name string) (Value, bool) {
	switch name {
	case FieldTitle:
		return String(f.Title), true
	case FieldYear:
		return Int(f.Year), true
	}
	return nil, false
}

// Role joins one Actor to one Film and carries the character played.
type Role struct {
	ID        EntityID
	Character string
	ActorID   EntityID
	FilmID    EntityID
}

func (r *Role) EntityID() EntityID { return r.ID }
func (r *Role) Kind() Kind         { return KindRole }
func (r *Role) Display() string    { return r.Character }

func (r *Role) Field(name string) (Value, bool) {
	if name == FieldCharacter {
		return String(r.Character), true
	}
	return nil, false
}
