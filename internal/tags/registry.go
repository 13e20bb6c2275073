package tags

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Registry is the canonical set of legal fact identifiers. It is consulted
// only by the resolver's optional strict validation pass; the pipeline itself
// never requires facts to be pre-registered.
type Registry struct {
	names map[string]struct{}
}

// NewRegistry creates a registry seeded with the given fact names.
func NewRegistry(names ...string) *Registry {
	r := &Registry{names: make(map[string]struct{}, len(names))}
	r.Register(names...)
	return r
}

// Register adds fact names to the registry. Blank names are ignored.
func (r *Registry) Register(names ...string) {
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		r.names[n] = struct{}{}
	}
}

// Known reports whether the exact fact name is registered.
func (r *Registry) Known(name string) bool {
	_, ok := r.names[strings.TrimSpace(name)]
	return ok
}

// Len returns the number of registered fact names.
func (r *Registry) Len() int {
	return len(r.names)
}

// Names returns all registered fact names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.names))
	for n := range r.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// LoadRegistry reads a registry file: a YAML sequence of fact names.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fact registry %s: %w", path, err)
	}

	var names []string
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("parsing fact registry %s: %w", path, err)
	}
	return NewRegistry(names...), nil
}
