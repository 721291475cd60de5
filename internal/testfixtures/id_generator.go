package testfixtures

import (
	"fmt"
	"sync/atomic"
)

// IDGenerator hands out "<prefix>-<n>" identifiers, starting at 1. It is safe for
// concurrent use so parallel tests can share the package-level fixture generators.
type IDGenerator struct {
	prefix  string
	counter atomic.Uint64
}

// NewIDGenerator returns a generator for prefix, or "draft" when prefix is empty.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "draft"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier.
func (g *IDGenerator) Next() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.counter.Add(1))
}

// NextFunc adapts Next to the func() string the services take. A nil generator yields "".
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}
