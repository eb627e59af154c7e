package dataset

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cinegraph/internal/model"
	"github.com/roach88/cinegraph/internal/store"
)

// Document is the YAML dataset format.
type Document struct {
	Countries []CountryDoc  `yaml:"countries"`
	Directors []DirectorDoc `yaml:"directors"`
	Actors    []ActorDoc    `yaml:"actors"`
	Films     []FilmDoc     `yaml:"films"`
	Roles     []RoleDoc     `yaml:"roles"`
}

type CountryDoc struct {
	Key  int64  `yaml:"key"`
	Name string `yaml:"name"`
}

type DirectorDoc struct {
	Key      int64  `yaml:"key"`
	Identity string `yaml:"identity"`
}

type ActorDoc struct {
	Key      int64  `yaml:"key"`
	Identity string `yaml:"identity"`

	// BirthDate is YYYY-MM-DD; empty when unknown.
	BirthDate string `yaml:"birth_date,omitempty"`
}

type FilmDoc struct {
	Key       int64   `yaml:"key"`
	Title     string  `yaml:"title"`
	Year      int     `yaml:"year"`
	Countries []int64 `yaml:"countries,omitempty"`
	Directors []int64 `yaml:"directors,omitempty"`
}

type RoleDoc struct {
	Key       int64  `yaml:"key"`
	Character string `yaml:"character"`
	Actor     int64  `yaml:"actor"`
	Film      int64  `yaml:"film"`
}

// LoadYAML reads a YAML dataset file and returns its records.
func LoadYAML(path string) ([]store.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	recs, err := DecodeYAML(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// DecodeYAML parses a YAML dataset. Unknown fields are rejected.
func DecodeYAML(r io.Reader) ([]store.Record, error) {
	var doc Document
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return doc.Records()
}

// Records flattens the document into an ordered record batch: entities by
// kind, then film/country links, then film/director links.
func (doc *Document) Records() ([]store.Record, error) {
	var recs []store.Record

	for _, c := range doc.Countries {
		recs = append(recs, store.CountryRecord(c.Key, c.Name))
	}
	for _, d := range doc.Directors {
		recs = append(recs, store.DirectorRecord(d.Key, d.Identity))
	}
	for _, a := range doc.Actors {
		var birth *model.Date
		if a.BirthDate != "" {
			d, err := model.ParseDate(a.BirthDate)
			if err != nil {
				return nil, fmt.Errorf("actor %d: %w", a.Key, err)
			}
			birth = &d
		}
		recs = append(recs, store.ActorRecord(a.Key, a.Identity, birth))
	}
	for _, f := range doc.Films {
		recs = append(recs, store.FilmRecord(f.Key, f.Title, f.Year))
	}
	for _, r := range doc.Roles {
		recs = append(recs, store.RoleRecord(r.Key, r.Character, r.Actor, r.Film))
	}
	for _, f := range doc.Films {
		for _, c := range f.Countries {
			recs = append(recs, store.FilmCountryRecord(f.Key, c))
		}
	}
	for _, f := range doc.Films {
		for _, d := range f.Directors {
			recs = append(recs, store.FilmDirectorRecord(f.Key, d))
		}
	}

	return recs, nil
}
