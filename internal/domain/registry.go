package domain

import (
	"fmt"
	"strings"
)

const (
	TagChemical   = "chem"
	TagMaterial   = "mat"
	TagBiological = "bio"
)

var aliases = map[string]string{
	"chemical":   TagChemical,
	"material":   TagMaterial,
	"biological": TagBiological,
}

// Registry holds the domains available to the lab. Lookups are read-only,
// so a Registry can be shared between goroutines once built.
type Registry struct {
	domains map[string]*Domain
	order   []string
}

// NewRegistry returns a registry with the three built-in domains.
func NewRegistry() *Registry {
	r := &Registry{domains: make(map[string]*Domain)}
	r.Register(NewChemical())
	r.Register(NewMaterial())
	r.Register(NewBiological())
	return r
}

// Register adds or replaces a domain. It is meant for startup only.
func (r *Registry) Register(d *Domain) {
	if _, ok := r.domains[d.Tag]; !ok {
		r.order = append(r.order, d.Tag)
	}
	r.domains[d.Tag] = d
}

// Get resolves a tag or alias, case-insensitively.
func (r *Registry) Get(tag string) (*Domain, error) {
	key := strings.ToLower(strings.TrimSpace(tag))
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	d, ok := r.domains[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDomain, tag)
	}
	return d, nil
}

// List returns domains in registration order.
func (r *Registry) List() []*Domain {
	out := make([]*Domain, 0, len(r.order))
	for _, tag := range r.order {
		out = append(out, r.domains[tag])
	}
	return out
}

func (r *Registry) Tags() []string {
	tags := make([]string, len(r.order))
	copy(tags, r.order)
	return tags
}
