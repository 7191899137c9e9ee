// Package runid names calculation runs. Every command takes one id at start;
// it is echoed in the JSON response and in each log line, so a plot file or
// a log excerpt can be matched to the output that produced it.
package runid

import (
	"sync"

	"github.com/google/uuid"
)

// Generator hands out one run id per command invocation.
type Generator interface {
	Generate() string
}

// UUIDv7Generator is the generator used outside tests. UUIDv7 ids sort by
// creation time, so runs listed by id come out in the order they started.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7. It panics only when the system
// random source fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator replays a list of run ids so command output can be compared
// byte for byte. Once the list is used up the last id repeats; with no ids at
// all it returns "", which drops run_id from JSON responses.
type FixedGenerator struct {
	mu   sync.Mutex
	ids  []string
	next int
}

// NewFixedGenerator returns a generator that yields ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next run id.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case len(g.ids) == 0:
		return ""
	case g.next >= len(g.ids):
		return g.ids[len(g.ids)-1]
	}
	id := g.ids[g.next]
	g.next++
	return id
}
