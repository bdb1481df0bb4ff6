package goquery

import (
	"slices"
	"sync"

	"github.com/fwojciec/spyder"
)

var _ spyder.SiteParserRegistry = (*Registry)(nil)

// Registry manages site parsers by name. The crawler.site setting picks
// one of the registered parsers.
type Registry struct {
	mu      sync.RWMutex
	parsers map[string]spyder.SiteParser
}

// NewRegistry creates a Registry holding parsers.
func NewRegistry(parsers ...spyder.SiteParser) *Registry {
	r := &Registry{parsers: make(map[string]spyder.SiteParser)}
	for _, p := range parsers {
		r.Register(p)
	}
	return r
}

// Get returns the parser registered under name.
func (r *Registry) Get(name string) (spyder.SiteParser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.parsers[name]
	if !ok {
		return nil, spyder.Errorf(spyder.ECONFIG, "unknown crawler.site %q (available: %v)", name, r.listLocked())
	}
	return p, nil
}

// Register adds a parser under its name.
// A parser already registered under the same name is replaced.
func (r *Registry) Register(parser spyder.SiteParser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers[parser.Name()] = parser
}

// List returns all registered parser names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listLocked()
}

func (r *Registry) listLocked() []string {
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
