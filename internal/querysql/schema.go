package querysql

import (
	"github.com/roach88/cinegraph/internal/index"
	"github.com/roach88/cinegraph/internal/model"
)

// table maps an entity kind onto the dataset schema.
type table struct {
	name    string
	display string
	columns map[string]string // field name -> column
}

var tables = map[model.Kind]table{
	model.KindActor: {
		name:    "actor",
		display: "identity",
		columns: map[string]string{
			model.FieldIdentity:  "identity",
			model.FieldBirthDate: "birth_date",
		},
	},
	model.KindDirector: {
		name:    "director",
		display: "identity",
		columns: map[string]string{model.FieldIdentity: "identity"},
	},
	model.KindCountry: {
		name:    "country",
		display: "name",
		columns: map[string]string{model.FieldName: "name"},
	},
	model.KindFilm: {
		name:    "film",
		display: "title",
		columns: map[string]string{
			model.FieldTitle: "title",
			model.FieldYear:  "year",
		},
	},
	model.KindRole: {
		name:    "role",
		display: "name",
		columns: map[string]string{model.FieldCharacter: "name"},
	},
}

// relation describes how a relationship is stored.
//
// Role relationships are foreign keys on role (link is empty, leftKey is
// the role column holding the left endpoint's id). Film links are rows in
// a link table with one column per endpoint.
type relation struct {
	link     string
	leftKey  string
	rightKey string
}

var relations = map[index.Relationship]relation{
	index.ActorRole:    {leftKey: "actor_id"},
	index.FilmRole:     {leftKey: "film_id"},
	index.FilmCountry:  {link: "film_country", leftKey: "film_id", rightKey: "country_id"},
	index.FilmDirector: {link: "film_director", leftKey: "film_id", rightKey: "director_id"},
}
