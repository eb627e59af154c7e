package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cinegraph/internal/index"
	"github.com/roach88/cinegraph/internal/model"
)

func TestPlan_Kinds(t *testing.T) {
	p := actorToCountry().MustBuild()

	kinds, err := p.Kinds()
	require.NoError(t, err)
	assert.Equal(t, []model.Kind{model.KindActor, model.KindRole, model.KindFilm, model.KindCountry}, kinds)
}

func TestPlan_OutputKind(t *testing.T) {
	p := actorToCountry().Select(2).MustBuild()

	k, err := p.OutputKind()
	require.NoError(t, err)
	assert.Equal(t, model.KindFilm, k)
}

func TestParseSortMode(t *testing.T) {
	tests := []struct {
		in   string
		want SortMode
	}{
		{"", SortNone},
		{"none", SortNone},
		{"identity", SortIdentity},
		{"collated", SortCollated},
	}
	for _, tt := range tests {
		got, err := ParseSortMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseSortMode("Identity")
	assert.ErrorIs(t, err, ErrInvalidPlan)
}

func TestBuilder_BuildDoesNotShareSlices(t *testing.T) {
	b := NewPlan(model.KindActor).Hop(index.ActorRole, index.Forward)
	first := b.MustBuild()

	b.Hop(index.FilmRole, index.Reverse)
	second := b.MustBuild()

	assert.Len(t, first.Hops, 1)
	assert.Len(t, second.Hops, 2)
}

func TestBuilder_Defaults(t *testing.T) {
	p := NewPlan(model.KindCountry).MustBuild()

	assert.Equal(t, SortNone, p.Sort)
	assert.False(t, p.Distinct)
	assert.Zero(t, p.Output)
	assert.Zero(t, p.Limit)
	assert.Empty(t, p.Filters)
}

func TestBuilder_MustBuildPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewPlan(model.KindActor).Hop(index.FilmCountry, index.Forward).MustBuild()
	})
}
