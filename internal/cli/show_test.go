package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cinegraph/internal/index"
)

type showResponse struct {
	Status string       `json:"status"`
	Data   EntityOutput `json:"data"`
	Error  *CLIError    `json:"error"`
}

func relatedGroup(t *testing.T, out EntityOutput, rel index.Relationship) RelatedGroup {
	t.Helper()
	for _, g := range out.Related {
		if g.Relationship == rel {
			return g
		}
	}
	t.Fatalf("no %s group in %+v", rel, out.Related)
	return RelatedGroup{}
}

func TestShowFilm(t *testing.T) {
	out, _, err := execute(t, "show", "film", "31", "--dataset", testDataset, "--format", "json")
	require.NoError(t, err)

	var resp showResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	film := resp.Data
	assert.Equal(t, "Gladiator", film.Display)
	assert.Equal(t, "Gladiator", film.Fields["title"])
	assert.Equal(t, float64(2000), film.Fields["year"])

	// A film is not an endpoint of actor_role.
	require.Len(t, film.Related, 3)

	roles := relatedGroup(t, film, index.FilmRole)
	require.Len(t, roles.Entities, 1)
	assert.Equal(t, "Maximus", roles.Entities[0].Display)
	assert.EqualValues(t, 49, roles.Entities[0].ID)

	countries := relatedGroup(t, film, index.FilmCountry)
	require.Len(t, countries.Entities, 2)
	assert.EqualValues(t, 2, countries.Entities[0].ID)
	assert.Equal(t, "United States", countries.Entities[0].Display)
	assert.EqualValues(t, 3, countries.Entities[1].ID)
	assert.Equal(t, "United Kingdom", countries.Entities[1].Display)

	directors := relatedGroup(t, film, index.FilmDirector)
	require.Len(t, directors.Entities, 1)
	assert.EqualValues(t, 5, directors.Entities[0].ID)
	assert.Equal(t, "Ridley Scott", directors.Entities[0].Display)
}

func TestShowActorText(t *testing.T) {
	out, _, err := execute(t, "show", "actor", "17", "--dataset", testSQLDataset)
	require.NoError(t, err)

	assert.Contains(t, out, "actor 17: Brad Pitt\n")
	assert.Contains(t, out, "1963-12-18")
	assert.Contains(t, out, "actor_role (4)\n")
	assert.Contains(t, out, "role 55: Max Vatan")
	assert.Contains(t, out, "role 67: David Mills")
}

func TestShowNullField(t *testing.T) {
	out, _, err := execute(t, "show", "actor", "15", "--dataset", testDataset, "--format", "json")
	require.NoError(t, err)

	var resp showResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "A.J. Danna", resp.Data.Display)
	v, ok := resp.Data.Fields["birth_date"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestShowErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		exitCode int
		code     string
	}{
		{"unknown kind", []string{"show", "studio", "1"}, ExitCommandError, ErrCodeUnknownKind},
		{"bad id", []string{"show", "film", "abc"}, ExitCommandError, ErrCodeGeneric},
		{"missing id", []string{"show", "film", "999"}, ExitFailure, ErrCodeEntityMissing},
		{"wrong kind for id", []string{"show", "actor", "31"}, ExitFailure, ErrCodeEntityMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "--dataset", testDataset, "--format", "json")
			out, _, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, tt.exitCode, GetExitCode(err))

			var resp showResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestShowArgs(t *testing.T) {
	_, _, err := execute(t, "show", "film")
	require.Error(t, err)
}
