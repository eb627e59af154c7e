package testutil

// FixedQueryIDGenerator returns the same query id every time.
//
// This keeps Resolve output byte-identical across runs so results can be
// compared against golden files.
//
// Thread-safety: FixedQueryIDGenerator is stateless and safe for concurrent use.
type FixedQueryIDGenerator struct {
	id string
}

// NewFixedQueryIDGenerator creates a fixed query id generator.
// If id is empty, Generate returns "test-query-default".
func NewFixedQueryIDGenerator(id string) *FixedQueryIDGenerator {
	if id == "" {
		id = "test-query-default"
	}
	return &FixedQueryIDGenerator{id: id}
}

// Generate returns the fixed query id.
//
// Implements engine.QueryIDGenerator.
func (g *FixedQueryIDGenerator) Generate() string {
	return g.id
}
