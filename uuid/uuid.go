// Package uuid provides random identifiers backed by google/uuid.
package uuid

import (
	"github.com/fwojciec/pageport"
	"github.com/google/uuid"
)

var _ pageport.IDGenerator = (*Generator)(nil)

// Generator hands out random node identifiers. An optional prefix keeps IDs
// valid where a builder requires them to start with a letter.
type Generator struct {
	Prefix string
}

// NewGenerator returns a Generator without prefix.
func NewGenerator() *Generator {
	return &Generator{}
}

// NextID returns a new random identifier.
func (g *Generator) NextID() string {
	return g.Prefix + uuid.NewString()
}

// NewID returns a random identifier for persisted records.
func NewID() string {
	return uuid.NewString()
}
