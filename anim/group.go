package anim

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrUnknownCounter is returned when a named counter is not registered.
	ErrUnknownCounter = errors.New("unknown counter")
	// ErrDuplicateCounter is returned when a name is registered twice.
	ErrDuplicateCounter = errors.New("duplicate counter")
)

// Group holds named counters for the display sinks.
type Group struct {
	mu       sync.RWMutex
	counters map[string]*Counter
	names    []string
}

// NewGroup creates an empty Group.
func NewGroup() *Group {
	g := new(Group)
	g.counters = make(map[string]*Counter)
	return g
}

// Add registers c under its name.
func (g *Group) Add(c *Counter) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, found := g.counters[c.Name()]; found {
		return fmt.Errorf("%w: %q", ErrDuplicateCounter, c.Name())
	}

	g.counters[c.Name()] = c
	g.names = append(g.names, c.Name())
	sort.Strings(g.names)
	return nil
}

// Get looks up a counter by name.
func (g *Group) Get(name string) (*Counter, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	c, found := g.counters[name]
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCounter, name)
	}
	return c, nil
}

// Len returns the number of counters.
func (g *Group) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.names)
}

// Counters returns the counters ordered by name.
func (g *Group) Counters() []*Counter {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]*Counter, 0, len(g.names))
	for _, name := range g.names {
		out = append(out, g.counters[name])
	}
	return out
}

// Snapshots returns a snapshot of every counter ordered by name.
func (g *Group) Snapshots() []Snapshot {
	counters := g.Counters()
	out := make([]Snapshot, 0, len(counters))
	for _, c := range counters {
		out = append(out, c.Snapshot())
	}
	return out
}

// Snapshot returns the snapshot of a named counter.
func (g *Group) Snapshot(name string) (Snapshot, error) {
	c, err := g.Get(name)
	if err != nil {
		return Snapshot{}, err
	}
	return c.Snapshot(), nil
}

// Restart starts a new session on a named counter.
func (g *Group) Restart(name string) error {
	c, err := g.Get(name)
	if err != nil {
		return err
	}
	c.Start()
	return nil
}

// StartAll starts a new session on every counter.
func (g *Group) StartAll() {
	for _, c := range g.Counters() {
		c.Start()
	}
}

// StopAll tears down every counter.
func (g *Group) StopAll() {
	for _, c := range g.Counters() {
		c.Stop()
	}
}
