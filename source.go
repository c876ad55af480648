package pageport

import (
	"context"
	"strconv"
	"sync/atomic"
)

// DataSource builds the document model from one input representation.
type DataSource interface {
	// Kind reports which representation the source reads.
	Kind() SourceKind

	// Build returns a freshly constructed Document. Node IDs are drawn from ids.
	Build(ctx context.Context, ids IDGenerator) (*Document, error)
}

// Block is one native structured block, shaped like the block lists that
// block editors serialize (name, attributes, inner markup, nested blocks).
type Block struct {
	Name        string         `json:"name"`
	Attrs       map[string]any `json:"attrs,omitempty"`
	InnerHTML   string         `json:"innerHTML,omitempty"`
	InnerBlocks []Block        `json:"innerBlocks,omitempty"`
}

// IDGenerator hands out node identifiers.
// Implementations must be safe for concurrent use.
type IDGenerator interface {
	NextID() string
}

var _ IDGenerator = (*CounterIDs)(nil)

// CounterIDs is a deterministic IDGenerator yielding "n1", "n2", ...
type CounterIDs struct {
	prefix string
	n      atomic.Int64
}

// NewCounterIDs returns a CounterIDs using the "n" prefix.
func NewCounterIDs() *CounterIDs {
	return &CounterIDs{prefix: "n"}
}

// NewPrefixedCounterIDs returns a CounterIDs using the given prefix.
func NewPrefixedCounterIDs(prefix string) *CounterIDs {
	return &CounterIDs{prefix: prefix}
}

// NextID returns the next identifier in sequence.
func (c *CounterIDs) NextID() string {
	return c.prefix + strconv.FormatInt(c.n.Add(1), 10)
}
