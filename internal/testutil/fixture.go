package testutil

import (
	"testing"
	"time"

	"github.com/roach88/cinegraph/internal/model"
	"github.com/roach88/cinegraph/internal/store"
)

// Film fixture answers. Tests assert against these so the numbers live in
// one place next to the data they are derived from.
const (
	FixtureActors               = 16
	FixtureFirstActor           = "A.J. Danna"
	FixtureBorn1985             = 3 // Keira Knightley, Léa Seydoux, second John Smith
	FixtureFilms2015Rows        = 4 // Matt Damon, Léa Seydoux, John Smith x2
	FixtureFranceRows           = 7 // Tom Hardy appears twice (two roles in Dunkirk)
	FixtureFranceDistinct       = 6
	Fixture2017Rows             = 5 // Margot Robbie only through a US film
	Fixture2017FranceRows       = 4
	FixtureRidleyScott20102020  = 4 // includes both 2010 and 2020 boundary films
	FixtureBradPittDirectors    = 3 // Zemeckis, Tarantino, Fincher; Fincher once
	FixtureBradPittDirectorRows = 4
)

func date(y int, m time.Month, d int) *model.Date {
	v := model.NewDate(y, m, d)
	return &v
}

type fixtureFilm struct {
	key       int64
	title     string
	year      int
	countries []int64
	directors []int64
}

// FilmRecords returns the reference fixture as an ordered record batch.
//
// The fixture is small but exercises every query shape: duplicate
// identities (two "John Smith"), null birth dates, a case variant country
// ("france"), an actor with two roles in one film, an actor with no roles,
// a film without director and range boundaries at 2010 and 2020.
func FilmRecords() []store.Record {
	recs := []store.Record{
		store.CountryRecord(1, "France"),
		store.CountryRecord(2, "United States"),
		store.CountryRecord(3, "United Kingdom"),
		store.CountryRecord(4, "france"),

		store.DirectorRecord(1, "Ridley Scott"),
		store.DirectorRecord(2, "Christopher Nolan"),
		store.DirectorRecord(3, "Luc Besson"),
		store.DirectorRecord(4, "David Fincher"),
		store.DirectorRecord(5, "Robert Zemeckis"),
		store.DirectorRecord(6, "David Ayer"),
		store.DirectorRecord(7, "Quentin Tarantino"),
		store.DirectorRecord(8, "Abdellatif Kechiche"),
		store.DirectorRecord(9, "Sam Mendes"),
		store.DirectorRecord(10, "Craig Gillespie"),

		store.ActorRecord(1, "A.J. Danna", nil),
		store.ActorRecord(2, "Marion Cotillard", date(1975, time.September, 30)),
		store.ActorRecord(3, "Brad Pitt", date(1963, time.December, 18)),
		store.ActorRecord(4, "Margot Robbie", date(1990, time.July, 2)),
		store.ActorRecord(5, "Jean Reno", date(1948, time.July, 30)),
		store.ActorRecord(6, "Russell Crowe", date(1964, time.April, 7)),
		store.ActorRecord(7, "Matt Damon", date(1970, time.October, 8)),
		store.ActorRecord(8, "Adèle Exarchopoulos", date(1993, time.November, 22)),
		store.ActorRecord(9, "Keira Knightley", date(1985, time.March, 26)),
		store.ActorRecord(10, "Léa Seydoux", date(1985, time.July, 1)),
		store.ActorRecord(11, "Tom Hardy", date(1977, time.September, 15)),
		store.ActorRecord(12, "John Smith", nil),
		store.ActorRecord(13, "John Smith", date(1985, time.December, 31)),
		store.ActorRecord(14, "Dane DeHaan", date(1986, time.February, 6)),
		store.ActorRecord(15, "Cara Delevingne", date(1992, time.August, 12)),
		store.ActorRecord(16, "Zoe Saldana", date(1978, time.June, 19)),
	}

	films := []fixtureFilm{
		{1, "Gladiator", 2000, []int64{2, 3}, []int64{1}},
		{2, "Robin Hood", 2010, []int64{2, 3}, []int64{1}},
		{3, "The Martian", 2015, []int64{2}, []int64{1}},
		{4, "Raised by Wolves", 2020, []int64{2}, []int64{1}},
		{5, "The Last Duel", 2021, []int64{2, 3}, []int64{1}},
		{6, "Allied", 2016, []int64{2, 3}, []int64{5}},
		{7, "Inception", 2010, []int64{2, 3}, []int64{2}},
		{8, "Dunkirk", 2017, []int64{1, 2, 3}, []int64{2}},
		{9, "Léon", 1994, []int64{1}, []int64{3}},
		{10, "Valerian", 2017, []int64{1}, []int64{3}},
		{11, "Suicide Squad", 2016, []int64{2}, []int64{6}},
		{12, "Once Upon a Time in Hollywood", 2019, []int64{2, 3}, []int64{7}},
		{13, "Fight Club", 1999, []int64{2}, []int64{4}},
		{14, "Se7en", 1995, []int64{2}, []int64{4}},
		{15, "Blue Is the Warmest Colour", 2013, []int64{1}, []int64{8}},
		{16, "Spectre", 2015, []int64{2, 3}, []int64{9}},
		{17, "Untitled Short", 2015, []int64{4}, nil},
		{18, "I, Tonya", 2017, []int64{2}, []int64{10}},
	}
	for _, f := range films {
		recs = append(recs, store.FilmRecord(f.key, f.title, f.year))
	}

	recs = append(recs,
		store.RoleRecord(1, "Maximus", 6, 1),
		store.RoleRecord(2, "Robin Longstride", 6, 2),
		store.RoleRecord(3, "Mark Watney", 7, 3),
		store.RoleRecord(4, "Mother", 1, 4),
		store.RoleRecord(5, "Jean de Carrouges", 7, 5),
		store.RoleRecord(6, "Marianne Beauséjour", 2, 6),
		store.RoleRecord(7, "Max Vatan", 3, 6),
		store.RoleRecord(8, "Mal", 2, 7),
		store.RoleRecord(9, "Eames", 11, 7),
		store.RoleRecord(10, "Farrier", 11, 8),
		store.RoleRecord(11, "Léon", 5, 9),
		store.RoleRecord(12, "Valerian", 14, 10),
		store.RoleRecord(13, "Laureline", 15, 10),
		store.RoleRecord(14, "Harley Quinn", 4, 11),
		store.RoleRecord(15, "Enchantress", 15, 11),
		store.RoleRecord(16, "Cliff Booth", 3, 12),
		store.RoleRecord(17, "Sharon Tate", 4, 12),
		store.RoleRecord(18, "Tyler Durden", 3, 13),
		store.RoleRecord(19, "David Mills", 3, 14),
		store.RoleRecord(20, "Adèle", 8, 15),
		store.RoleRecord(21, "Emma", 10, 15),
		store.RoleRecord(22, "Madeleine Swann", 10, 16),
		store.RoleRecord(23, "Extra", 12, 17),
		store.RoleRecord(24, "Extra", 13, 17),
		store.RoleRecord(25, "Farrier (voice)", 11, 8),
		store.RoleRecord(26, "Lady Marian", 9, 2),
		store.RoleRecord(27, "Tonya Harding", 4, 18),
	)

	for _, f := range films {
		for _, c := range f.countries {
			recs = append(recs, store.FilmCountryRecord(f.key, c))
		}
		for _, d := range f.directors {
			recs = append(recs, store.FilmDirectorRecord(f.key, d))
		}
	}

	return recs
}

// LoadedStore returns a store loaded with FilmRecords.
func LoadedStore(t testing.TB) *store.Store {
	t.Helper()
	s := store.New()
	if err := s.Load(FilmRecords()); err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return s
}

// FindByDisplay returns the ids of every entity of kind whose display
// attribute equals display, in load order.
func FindByDisplay(t testing.TB, s *store.Store, kind model.Kind, display string) []model.EntityID {
	t.Helper()
	ids, err := s.IDs(kind)
	if err != nil {
		t.Fatalf("ids %s: %v", kind, err)
	}
	var out []model.EntityID
	for _, id := range ids {
		e, err := s.GetByID(kind, id)
		if err != nil {
			t.Fatalf("get %s %d: %v", kind, id, err)
		}
		if e.Display() == display {
			out = append(out, id)
		}
	}
	return out
}

// MustFind returns the single entity id of kind with the given display.
func MustFind(t testing.TB, s *store.Store, kind model.Kind, display string) model.EntityID {
	t.Helper()
	ids := FindByDisplay(t, s, kind, display)
	if len(ids) != 1 {
		t.Fatalf("expected exactly one %s %q, found %d", kind, display, len(ids))
	}
	return ids[0]
}
