package store

import "github.com/roach88/cinegraph/internal/model"

// RecordKind tags a raw record.
type RecordKind string

const (
	RecordActor        RecordKind = "actor"
	RecordDirector     RecordKind = "director"
	RecordCountry      RecordKind = "country"
	RecordFilm         RecordKind = "film"
	RecordRole         RecordKind = "role"
	RecordFilmCountry  RecordKind = "film_country"
	RecordFilmDirector RecordKind = "film_director"
)

// Record is one raw entity or link record as supplied by a dataset source.
//
// Which fields are meaningful depends on Kind:
//
//	actor          Key, Name (identity), BirthDate
//	director       Key, Name (identity)
//	country        Key, Name
//	film           Key, Name (title), Year
//	role           Key, Name (character), ActorKey, FilmKey
//	film_country   FilmKey, CountryKey
//	film_director  FilmKey, DirectorKey
type Record struct {
	Kind        RecordKind
	Key         int64
	Name        string
	BirthDate   *model.Date
	Year        int
	ActorKey    int64
	FilmKey     int64
	CountryKey  int64
	DirectorKey int64
}

// ActorRecord builds an actor record. birth may be nil.
func ActorRecord(key int64, identity string, birth *model.Date) Record {
	return Record{Kind: RecordActor, Key: key, Name: identity, BirthDate: birth}
}

// DirectorRecord builds a director record.
func DirectorRecord(key int64, identity string) Record {
	return Record{Kind: RecordDirector, Key: key, Name: identity}
}

// CountryRecord builds a country record.
func CountryRecord(key int64, name string) Record {
	return Record{Kind: RecordCountry, Key: key, Name: name}
}

// FilmRecord builds a film record.
func FilmRecord(key int64, title string, year int) Record {
	return Record{Kind: RecordFilm, Key: key, Name: title, Year: year}
}

// RoleRecord builds a role record joining an actor and a film.
func RoleRecord(key int64, character string, actorKey, filmKey int64) Record {
	return Record{Kind: RecordRole, Key: key, Name: character, ActorKey: actorKey, FilmKey: filmKey}
}

// FilmCountryRecord links a film to a country of origin.
func FilmCountryRecord(filmKey, countryKey int64) Record {
	return Record{Kind: RecordFilmCountry, FilmKey: filmKey, CountryKey: countryKey}
}

// FilmDirectorRecord links a film to one of its directors.
func FilmDirectorRecord(filmKey, directorKey int64) Record {
	return Record{Kind: RecordFilmDirector, FilmKey: filmKey, DirectorKey: directorKey}
}

// entityKind maps entity record kinds to model kinds.
func (k RecordKind) entityKind() (model.Kind, bool) {
	switch k {
	case RecordActor:
		return model.KindActor, true
	case RecordDirector:
		return model.KindDirector, true
	case RecordCountry:
		return model.KindCountry, true
	case RecordFilm:
		return model.KindFilm, true
	case RecordRole:
		return model.KindRole, true
	}
	return "", false
}

// LinkKind names a film link relationship held by the store.
type LinkKind string

const (
	LinkFilmCountry  LinkKind = "film_country"
	LinkFilmDirector LinkKind = "film_director"
)

// Link is a resolved film↔country or film↔director record.
type Link struct {
	Kind   LinkKind
	FilmID model.EntityID
	// OtherID is the country or director on the far side of the link.
	OtherID model.EntityID
}
