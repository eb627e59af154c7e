package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/cinegraph/internal/store"
)

// LoadSQLDump executes a SQL dump into a fresh in-memory database and
// returns its records.
func LoadSQLDump(ctx context.Context, path string) ([]store.Record, error) {
	script, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dump: %w", err)
	}

	db, err := OpenSQL(MemoryPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := db.ExecDump(ctx, string(script)); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return db.Records(ctx)
}

// Load reads a dataset, choosing the format from the file extension:
// .sql for SQL dumps, .yaml or .yml for YAML documents.
func Load(ctx context.Context, path string) ([]store.Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sql":
		return LoadSQLDump(ctx, path)
	case ".yaml", ".yml":
		return LoadYAML(path)
	}
	return nil, fmt.Errorf("unsupported dataset format %q (want .sql, .yaml or .yml)", filepath.Ext(path))
}

// LoadStore reads a dataset and loads it into a new store.
func LoadStore(ctx context.Context, path string) (*store.Store, error) {
	recs, err := Load(ctx, path)
	if err != nil {
		return nil, err
	}
	s := store.New()
	if err := s.Load(recs); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}
