package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/roach88/cinegraph/internal/model"
)

func smallBatch() []Record {
	return []Record{
		CountryRecord(1, "France"),
		DirectorRecord(1, "Luc Besson"),
		ActorRecord(1, "Jean Reno", &model.Date{Year: 1948, Month: 7, Day: 30}),
		FilmRecord(1, "Léon", 1994),
		RoleRecord(1, "Léon", 1, 1),
		FilmCountryRecord(1, 1),
		FilmDirectorRecord(1, 1),
	}
}

func mustLoad(t *testing.T, records []Record) *Store {
	t.Helper()
	s := New()
	if err := s.Load(records); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	return s
}

func TestLoad_AssignsIDsInRecordOrder(t *testing.T) {
	s := mustLoad(t, smallBatch())

	want := []struct {
		id      model.EntityID
		kind    model.Kind
		display string
	}{
		{1, model.KindCountry, "France"},
		{2, model.KindDirector, "Luc Besson"},
		{3, model.KindActor, "Jean Reno"},
		{4, model.KindFilm, "Léon"},
		{5, model.KindRole, "Léon"},
	}
	for _, w := range want {
		e, err := s.GetByID(w.kind, w.id)
		if err != nil {
			t.Fatalf("GetByID(%s, %d) failed: %v", w.kind, w.id, err)
		}
		if e.Display() != w.display {
			t.Errorf("GetByID(%s, %d).Display() = %q, want %q", w.kind, w.id, e.Display(), w.display)
		}
	}

	role, err := s.GetByID(model.KindRole, 5)
	if err != nil {
		t.Fatal(err)
	}
	r := role.(*model.Role)
	if r.ActorID != 3 || r.FilmID != 4 {
		t.Errorf("role references = (%d, %d), want (3, 4)", r.ActorID, r.FilmID)
	}
}

func TestLoad_ForwardReferences(t *testing.T) {
	// Role and links before the entities they reference.
	records := []Record{
		RoleRecord(1, "Léon", 1, 1),
		FilmCountryRecord(1, 1),
		ActorRecord(1, "Jean Reno", nil),
		FilmRecord(1, "Léon", 1994),
		CountryRecord(1, "France"),
	}
	s := mustLoad(t, records)

	links, err := s.Links()
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 1 || links[0].Kind != LinkFilmCountry {
		t.Fatalf("Links() = %+v, want one film_country link", links)
	}
}

func TestLoad_IntegrityViolations(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		code    LoadErrorCode
		index   int
	}{
		{
			name:    "role with missing actor",
			records: append(smallBatch(), RoleRecord(2, "Ghost", 99, 1)),
			code:    ErrCodeDanglingReference,
			index:   7,
		},
		{
			name:    "role with missing film",
			records: append(smallBatch(), RoleRecord(2, "Ghost", 1, 99)),
			code:    ErrCodeDanglingReference,
			index:   7,
		},
		{
			name:    "film link to missing country",
			records: append(smallBatch(), FilmCountryRecord(1, 42)),
			code:    ErrCodeDanglingReference,
			index:   7,
		},
		{
			name:    "film link to missing director",
			records: append(smallBatch(), FilmDirectorRecord(1, 42)),
			code:    ErrCodeDanglingReference,
			index:   7,
		},
		{
			name:    "duplicate country name",
			records: append(smallBatch(), CountryRecord(2, "France")),
			code:    ErrCodeDuplicateCountry,
			index:   7,
		},
		{
			name:    "duplicate key",
			records: append(smallBatch(), ActorRecord(1, "Someone Else", nil)),
			code:    ErrCodeDuplicateKey,
			index:   7,
		},
		{
			name:    "duplicate link",
			records: append(smallBatch(), FilmDirectorRecord(1, 1)),
			code:    ErrCodeDuplicateLink,
			index:   7,
		},
		{
			name:    "missing identity",
			records: append(smallBatch(), ActorRecord(2, "", nil)),
			code:    ErrCodeMissingAttribute,
			index:   7,
		},
		{
			name:    "unknown kind",
			records: append(smallBatch(), Record{Kind: "genre", Key: 1, Name: "Drama"}),
			code:    ErrCodeUnknownKind,
			index:   7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			err := s.Load(tt.records)
			if err == nil {
				t.Fatal("Load() succeeded, want LoadError")
			}
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("Load() error = %T %v, want *LoadError", err, err)
			}
			if le.Code != tt.code {
				t.Errorf("Code = %s, want %s", le.Code, tt.code)
			}
			if le.Index != tt.index {
				t.Errorf("Index = %d, want %d", le.Index, tt.index)
			}
			if !IsLoadError(err) {
				t.Error("IsLoadError() = false")
			}
			if s.Loaded() {
				t.Error("failed Load published a snapshot")
			}
		})
	}
}

func TestLoad_CountryNamesAreCaseSensitive(t *testing.T) {
	s := mustLoad(t, append(smallBatch(), CountryRecord(2, "france")))
	n, err := s.Count(model.KindCountry)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("Count(country) = %d, want 2", n)
	}
}

func TestLoad_DuplicateIdentitiesKept(t *testing.T) {
	s := mustLoad(t, []Record{
		ActorRecord(1, "John Smith", nil),
		ActorRecord(2, "John Smith", nil),
	})
	n, _ := s.Count(model.KindActor)
	if n != 2 {
		t.Errorf("Count(actor) = %d, want 2", n)
	}
}

func TestLoad_SecondLoadRejected(t *testing.T) {
	s := mustLoad(t, smallBatch())

	err := s.Load([]Record{CountryRecord(9, "Italy")})
	if !errors.Is(err, ErrAlreadyLoaded) {
		t.Fatalf("second Load() error = %v, want ErrAlreadyLoaded", err)
	}

	n, _ := s.Count(model.KindCountry)
	if n != 1 {
		t.Errorf("second Load changed the store: %d countries", n)
	}
}

func TestLoad_RetryAfterFailure(t *testing.T) {
	s := New()
	if err := s.Load([]Record{RoleRecord(1, "Ghost", 1, 1)}); err == nil {
		t.Fatal("expected load error")
	}
	if err := s.Load(smallBatch()); err != nil {
		t.Fatalf("Load() after failed Load: %v", err)
	}
}

func TestLoad_ConcurrentLoadsSingleWinner(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Load(smallBatch())
		}(i)
	}
	wg.Wait()

	var ok, already int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrAlreadyLoaded):
			already++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || already != len(errs)-1 {
		t.Errorf("ok=%d already=%d, want 1 and %d", ok, already, len(errs)-1)
	}
}

func TestReads_NotLoaded(t *testing.T) {
	s := New()

	if _, err := s.GetByID(model.KindActor, 1); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("GetByID() error = %v, want ErrNotLoaded", err)
	}
	if _, err := s.IDs(model.KindActor); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("IDs() error = %v, want ErrNotLoaded", err)
	}
	if _, err := s.Stats(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Stats() error = %v, want ErrNotLoaded", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	s := mustLoad(t, smallBatch())

	if _, err := s.GetByID(model.KindActor, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(unknown) error = %v, want ErrNotFound", err)
	}
	// id 1 is a country
	if _, err := s.GetByID(model.KindActor, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(wrong kind) error = %v, want ErrNotFound", err)
	}
}

func TestIDs_ReturnsCopy(t *testing.T) {
	s := mustLoad(t, smallBatch())

	ids, _ := s.IDs(model.KindActor)
	ids[0] = 12345

	again, _ := s.IDs(model.KindActor)
	if again[0] != 3 {
		t.Errorf("IDs() exposed internal slice: got %d", again[0])
	}
}

func TestStats(t *testing.T) {
	s := mustLoad(t, smallBatch())

	st, err := s.Stats()
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range model.Kinds {
		if st.Entities[k] != 1 {
			t.Errorf("Entities[%s] = %d, want 1", k, st.Entities[k])
		}
	}
	if st.Links[LinkFilmCountry] != 1 || st.Links[LinkFilmDirector] != 1 {
		t.Errorf("Links = %v", st.Links)
	}
}
