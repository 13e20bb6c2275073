package inspect

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"miglens/internal/artifact"
	"miglens/internal/tags"
)

// cacheSize bounds the per-resolver memoization caches. Eviction only ever
// costs a recomputation; resolved sets stay correct.
const cacheSize = 1024

// Resolver computes the full required-fact and produced-fact sets for
// inspectors by walking their descriptor composition chains and following
// DependsOn references, and exposes the gating predicate the orchestrator
// uses before each invocation.
//
// Resolution results are memoized per inspector name in thread-safe caches,
// so a future parallel orchestrator can share one resolver. The caches live
// for the resolver's lifetime; ClearCache flushes them explicitly.
type Resolver struct {
	roster   Roster
	registry *tags.Registry
	required *lru.Cache[string, *tags.Set]
	produced *lru.Cache[string, *tags.Set]
}

// NewResolver creates a resolver over the given roster. registry may be nil;
// it is consulted only by Validate.
func NewResolver(roster Roster, registry *tags.Registry) *Resolver {
	required, _ := lru.New[string, *tags.Set](cacheSize)
	produced, _ := lru.New[string, *tags.Set](cacheSize)
	return &Resolver{
		roster:   roster,
		registry: registry,
		required: required,
		produced: produced,
	}
}

// Resolve returns the full required-fact set for the named inspector: the
// union of every descriptor in its composition chain, most-general-first,
// where each DependsOn reference contributes the referenced inspector's own
// resolved produced-fact set. A DependsOn name that resolves to no inspector
// contributes nothing; the dependency graph is deliberately best-effort.
func (r *Resolver) Resolve(name string) (*tags.Set, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty inspector name", ErrInvalidArgument)
	}
	if cached, ok := r.required.Get(name); ok {
		return cached.Clone(), nil
	}

	ins, ok := r.roster.ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown inspector %q", ErrInvalidArgument, name)
	}

	set := tags.New()
	desc := ins.Describe()
	for _, d := range desc.Chain() {
		set.AddAll(d.Requires...)
		for _, dep := range d.DependsOn {
			if dep == name {
				continue
			}
			set.Merge(r.producedOf(dep))
		}
	}

	r.required.Add(name, set)
	return set.Clone(), nil
}

// Produced returns the full produced-fact set for the named inspector: the
// union of Produces declarations along its descriptor composition chain.
func (r *Resolver) Produced(name string) (*tags.Set, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty inspector name", ErrInvalidArgument)
	}
	if _, ok := r.roster.ByName(name); !ok {
		return nil, fmt.Errorf("%w: unknown inspector %q", ErrInvalidArgument, name)
	}
	return r.producedOf(name).Clone(), nil
}

// producedOf resolves produced facts best-effort: an unknown name yields an
// empty set rather than an error.
func (r *Resolver) producedOf(name string) *tags.Set {
	if cached, ok := r.produced.Get(name); ok {
		return cached
	}

	set := tags.New()
	ins, ok := r.roster.ByName(name)
	if !ok {
		return set
	}
	desc := ins.Describe()
	for _, d := range desc.Chain() {
		set.AddAll(d.Produces...)
	}

	r.produced.Add(name, set)
	return set
}

// ShouldRun reports whether every resolved required fact is present on the
// artifact. An empty dependency set gates the inspector open unconditionally.
func (r *Resolver) ShouldRun(name string, a artifact.Artifact) (bool, error) {
	set, err := r.Resolve(name)
	if err != nil {
		return false, err
	}
	for _, fact := range set.Slice() {
		if !a.HasFact(fact) {
			return false, nil
		}
	}
	return true, nil
}

// ClearCache flushes the memoized resolution results, forcing recomputation
// on the next call. Intended for roster hot-reload and tests.
func (r *Resolver) ClearCache() {
	r.required.Purge()
	r.produced.Purge()
}

// Validate checks every resolved required fact of the named inspector
// against the canonical fact-name registry. A mismatch is a reportable
// design defect, not a runtime failure; callers decide whether to treat the
// returned ValidationError as fatal. With no registry configured, Validate
// always passes.
func (r *Resolver) Validate(name string) error {
	if r.registry == nil {
		return nil
	}
	set, err := r.Resolve(name)
	if err != nil {
		return err
	}

	var unknown []string
	for _, fact := range set.Slice() {
		if !r.registry.Known(fact) {
			unknown = append(unknown, fact)
		}
	}
	if len(unknown) > 0 {
		return &ValidationError{Inspector: name, Unknown: unknown}
	}
	return nil
}
