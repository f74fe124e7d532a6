package testutil

import "github.com/roach88/modelkit/pkg/model"

// FixedIDGenerator returns the same entity ID every time.
//
// Useful where a test compares log output or error messages that embed the
// entity ID. Use model.NewSequenceGenerator when IDs must be distinct.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a generator that always returns id.
// If id is empty, Generate returns "test-entity".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-entity"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed ID.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}

var _ model.IDGenerator = (*FixedIDGenerator)(nil)
