package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cinegraph/internal/index"
	"github.com/roach88/cinegraph/internal/model"
	"github.com/roach88/cinegraph/internal/queryir"
)

func TestCompile_NoHops(t *testing.T) {
	compiler := NewSQLCompiler()

	plan := queryir.NewPlan(model.KindActor).SortBy(queryir.SortIdentity).MustBuild()
	sql, params, err := compiler.Compile(plan)
	require.NoError(t, err)

	assert.Equal(t, "SELECT t0.id, t0.identity FROM actor t0 ORDER BY t0.identity COLLATE BINARY, t0.id", sql)
	assert.Empty(t, params)
}

func TestCompile_MultiHopWithFilters(t *testing.T) {
	compiler := NewSQLCompiler()

	plan := queryir.NewPlan(model.KindActor).
		Hop(index.ActorRole, index.Forward).
		Hop(index.FilmRole, index.Reverse).
		Hop(index.FilmCountry, index.Forward).
		Where(2, queryir.Equals{Field: model.FieldYear, Value: model.Int(2017)}).
		Where(3, queryir.Equals{Field: model.FieldName, Value: model.String("France")}).
		MustBuild()

	sql, params, err := compiler.Compile(plan)
	require.NoError(t, err)

	assert.Equal(t, "SELECT t0.id, t0.identity FROM actor t0"+
		" JOIN role t1 ON t1.actor_id = t0.id"+
		" JOIN film t2 ON t2.id = t1.film_id"+
		" JOIN film_country l3 ON l3.film_id = t2.id JOIN country t3 ON t3.id = l3.country_id"+
		" WHERE t2.year = ? AND t3.name = ?"+
		" ORDER BY t0.id, t1.id, t2.id, l3.rowid", sql)

	// Values NOT in SQL
	assert.NotContains(t, sql, "France")
	assert.Equal(t, []any{int64(2017), "France"}, params)
}

func TestCompile_ReverseLinkDistinctSelect(t *testing.T) {
	compiler := NewSQLCompiler()

	plan := queryir.NewPlan(model.KindDirector).
		Hop(index.FilmDirector, index.Reverse).
		Hop(index.FilmRole, index.Forward).
		Hop(index.ActorRole, index.Reverse).
		Where(3, queryir.Equals{Field: model.FieldIdentity, Value: model.String("Brad Pitt")}).
		Distinct().
		MustBuild()

	sql, params, err := compiler.Compile(plan)
	require.NoError(t, err)

	assert.Equal(t, "SELECT DISTINCT t0.id, t0.identity FROM director t0"+
		" JOIN film_director l1 ON l1.director_id = t0.id JOIN film t1 ON t1.id = l1.film_id"+
		" JOIN role t2 ON t2.film_id = t1.id"+
		" JOIN actor t3 ON t3.id = t2.actor_id"+
		" WHERE t3.identity = ?"+
		" ORDER BY t0.id", sql)
	assert.Equal(t, []any{"Brad Pitt"}, params)
}

func TestCompile_Predicates(t *testing.T) {
	tests := []struct {
		name   string
		start  model.Kind
		pred   queryir.Predicate
		where  string
		params []any
	}{
		{
			name:   "year of date",
			start:  model.KindActor,
			pred:   queryir.YearEquals{Field: model.FieldBirthDate, Year: 1985},
			where:  "WHERE CAST(strftime('%Y', t0.birth_date) AS INTEGER) = ?",
			params: []any{1985},
		},
		{
			name:   "inclusive range",
			start:  model.KindFilm,
			pred:   queryir.Between{Field: model.FieldYear, Low: 2010, High: 2020},
			where:  "WHERE t0.year BETWEEN ? AND ?",
			params: []any{int64(2010), int64(2020)},
		},
		{
			name:   "date equality",
			start:  model.KindActor,
			pred:   queryir.Equals{Field: model.FieldBirthDate, Value: model.NewDate(1985, 3, 26)},
			where:  "WHERE t0.birth_date = ?",
			params: []any{"1985-03-26"},
		},
		{
			name:   "role character column",
			start:  model.KindRole,
			pred:   queryir.Equals{Field: model.FieldCharacter, Value: model.String("Harley Quinn")},
			where:  "WHERE t0.name = ?",
			params: []any{"Harley Quinn"},
		},
		{
			name:  "and",
			start: model.KindFilm,
			pred: queryir.And{Predicates: []queryir.Predicate{
				queryir.Equals{Field: model.FieldTitle, Value: model.String("Dunkirk")},
				queryir.Between{Field: model.FieldYear, Low: 2000, High: 2020},
			}},
			where:  "WHERE (t0.title = ? AND t0.year BETWEEN ? AND ?)",
			params: []any{"Dunkirk", int64(2000), int64(2020)},
		},
		{
			name:   "empty and",
			start:  model.KindFilm,
			pred:   queryir.And{},
			where:  "WHERE 1 = 1",
			params: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := queryir.NewPlan(tt.start).Where(0, tt.pred).MustBuild()
			sql, params, err := NewSQLCompiler().Compile(plan)
			require.NoError(t, err)
			assert.Contains(t, sql, tt.where)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestCompile_SortAndLimit(t *testing.T) {
	plan := queryir.NewPlan(model.KindCountry).SortBy(queryir.SortCollated).Limit(2).MustBuild()

	sql, params, err := NewSQLCompiler().Compile(plan)
	require.NoError(t, err)

	assert.Contains(t, sql, "ORDER BY t0.name COLLATE NOCASE, t0.id LIMIT ?")
	assert.Equal(t, []any{2}, params)
}

func TestCompile_SelectIntermediate(t *testing.T) {
	plan := queryir.NewPlan(model.KindActor).
		Hop(index.ActorRole, index.Forward).
		Hop(index.FilmRole, index.Reverse).
		Select(2).
		MustBuild()

	sql, _, err := NewSQLCompiler().Compile(plan)
	require.NoError(t, err)
	assert.Contains(t, sql, "SELECT t2.id, t2.title FROM actor t0")
}

func TestCompile_InvalidPlan(t *testing.T) {
	_, _, err := NewSQLCompiler().Compile(queryir.Plan{
		Start: model.KindActor,
		Hops:  []queryir.Hop{{Rel: index.FilmCountry, Dir: index.Forward}},
	})
	assert.ErrorIs(t, err, queryir.ErrInvalidPlan)
}

func TestTablesCoverSchema(t *testing.T) {
	for kind, fields := range model.Schema {
		tbl, ok := tables[kind]
		require.True(t, ok, "no table for %s", kind)
		for _, f := range fields {
			_, ok := tbl.columns[f.Name]
			assert.True(t, ok, "%s.%s has no column", kind, f.Name)
		}
	}
	for _, r := range index.Relationships {
		_, ok := relations[r]
		assert.True(t, ok, "no storage for %s", r)
	}
}
