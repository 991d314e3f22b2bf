package testfixtures

import (
	"fmt"
	"sync"
)

// IDGenerator yields sequential identifiers ("area-1", "area-2", ...)
// in place of the UUIDs the wiring injects, so tests can predict the
// ids of created users, areas, and sessions.
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
}

// NewIDGenerator constructs a generator for the given prefix. An empty
// prefix yields plain "id-N" identifiers.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}

// NextFunc adapts the generator to the id-generator parameter the
// service constructors take.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// SetPrefix switches the prefix for subsequently generated ids.
func (g *IDGenerator) SetPrefix(prefix string) {
	g.mu.Lock()
	g.prefix = prefix
	g.mu.Unlock()
}

// SetCounter rewinds or fast-forwards the sequence so a test can line
// its expectations up with ids minted earlier.
func (g *IDGenerator) SetCounter(counter uint64) {
	g.mu.Lock()
	g.counter = counter
	g.mu.Unlock()
}

// FixedSuffix returns a function that always yields the provided
// four-character reservation ID suffix. An empty value falls back to
// "0000".
func FixedSuffix(suffix string) func() string {
	if suffix == "" {
		suffix = "0000"
	}
	return func() string { return suffix }
}
