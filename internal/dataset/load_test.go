package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cinegraph/internal/model"
	"github.com/roach88/cinegraph/internal/store"
)

var (
	filmsYAML = filepath.Join("..", "..", "testdata", "datasets", "films.yaml")
	filmsSQL  = filepath.Join("..", "..", "testdata", "datasets", "films.sql")
	dangling  = filepath.Join("..", "..", "testdata", "datasets", "dangling.yaml")
)

func TestLoad_BothFormatsMatchFixture(t *testing.T) {
	want := fixtureDigest(t)

	for _, path := range []string{filmsYAML, filmsSQL} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			recs, err := Load(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, want, digestOf(t, recs))
		})
	}
}

func TestLoadStore_Stats(t *testing.T) {
	s, err := LoadStore(context.Background(), filmsSQL)
	require.NoError(t, err)

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, map[model.Kind]int{
		model.KindActor:    16,
		model.KindDirector: 10,
		model.KindCountry:  4,
		model.KindFilm:     18,
		model.KindRole:     27,
	}, st.Entities)
	assert.Equal(t, 27, st.Links[store.LinkFilmCountry])
	assert.Equal(t, 17, st.Links[store.LinkFilmDirector])
}

func TestLoadStore_IntegrityError(t *testing.T) {
	_, err := LoadStore(context.Background(), dangling)
	require.Error(t, err)

	var le *store.LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, store.ErrCodeDanglingReference, le.Code)
	assert.Contains(t, le.Message, "actor key 2")
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := Load(context.Background(), "films.csv")
	assert.ErrorContains(t, err, `unsupported dataset format ".csv"`)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "missing.sql"))
	assert.Error(t, err)
}

func TestDecodeYAML(t *testing.T) {
	doc := `
countries:
  - {key: 1, name: France}
directors:
  - {key: 1, identity: Luc Besson}
actors:
  - {key: 1, identity: Jean Reno, birth_date: "1948-07-30"}
  - {key: 2, identity: Natalie Portman}
films:
  - {key: 1, title: Léon, year: 1994, countries: [1], directors: [1]}
roles:
  - {key: 1, character: Léon, actor: 1, film: 1}
  - {key: 2, character: Mathilda, actor: 2, film: 1}
`
	recs, err := DecodeYAML(strings.NewReader(doc))
	require.NoError(t, err)

	kinds := make([]store.RecordKind, len(recs))
	for i, r := range recs {
		kinds[i] = r.Kind
	}
	assert.Equal(t, []store.RecordKind{
		store.RecordCountry,
		store.RecordDirector,
		store.RecordActor, store.RecordActor,
		store.RecordFilm,
		store.RecordRole, store.RecordRole,
		store.RecordFilmCountry,
		store.RecordFilmDirector,
	}, kinds)

	assert.Equal(t, model.NewDate(1948, 7, 30), *recs[2].BirthDate)
	assert.Nil(t, recs[3].BirthDate)
	assert.Equal(t, int64(2), recs[6].ActorKey)
}

func TestDecodeYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown top-level field",
			doc:  "genres:\n  - {key: 1, name: Drama}\n",
			want: "field genres not found",
		},
		{
			name: "unknown entity field",
			doc:  "films:\n  - {key: 1, title: Léon, year: 1994, budget: 16}\n",
			want: "field budget not found",
		},
		{
			name: "bad date",
			doc:  "actors:\n  - {key: 7, identity: X, birth_date: \"1985-13-40\"}\n",
			want: "actor 7",
		},
		{
			name: "wrong type",
			doc:  "films:\n  - {key: 1, title: Léon, year: nineteen}\n",
			want: "failed to parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeYAML(strings.NewReader(tt.doc))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestDecodeYAML_Empty(t *testing.T) {
	recs, err := DecodeYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestLoadYAML_PathInError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("films: [{key: 1, tittle: x}]\n"), 0o644))

	_, err := LoadYAML(path)
	assert.ErrorContains(t, err, "bad.yaml")
}
