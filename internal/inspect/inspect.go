package inspect

import (
	"context"

	"miglens/internal/artifact"
)

// Scope identifies the artifact granularity an inspector operates on.
type Scope string

// Scope constants.
const (
	ScopeFile      Scope = "file"      // per source/resource file
	ScopeUnit      Scope = "unit"      // per compiled unit (archive, binary)
	ScopeAggregate Scope = "aggregate" // once per session, over the session artifact
	ScopeAny       Scope = "any"       // no granularity preference
)

// Descriptor declares an inspector's fact contract. It is static metadata:
// computed once per inspector and never consulted with runtime state.
//
// Base is the explicit composition chain: an inspector built on top of
// another inspector's declarations points Base at the more general
// descriptor, and the resolver unions the chain most-general-first.
type Descriptor struct {
	// Requires lists facts that must be present on an artifact before the
	// inspector may run against it.
	Requires []string
	// Produces lists facts the inspector attaches on a successful outcome.
	Produces []string
	// DependsOn names other inspectors whose full produced-fact sets are
	// also required. An unknown name contributes nothing.
	DependsOn []string
	// Scope is the artifact granularity.
	Scope Scope
	// Global marks inspectors that need the whole artifact set processed
	// before they run.
	Global bool
	// Base is the inherited descriptor, or nil.
	Base *Descriptor
}

// Chain returns the descriptor composition chain ordered most-general-first,
// ending with d itself.
func (d *Descriptor) Chain() []*Descriptor {
	var rev []*Descriptor
	for cur := d; cur != nil; cur = cur.Base {
		rev = append(rev, cur)
	}
	chain := make([]*Descriptor, len(rev))
	for i, c := range rev {
		chain[len(rev)-1-i] = c
	}
	return chain
}

// EffectiveScope returns the scope declared nearest to d along the
// composition chain. A descriptor that leaves Scope empty inherits it from
// its Base; a chain with no declaration at all yields ScopeAny.
func (d *Descriptor) EffectiveScope() Scope {
	for cur := d; cur != nil; cur = cur.Base {
		if cur.Scope != "" {
			return cur.Scope
		}
	}
	return ScopeAny
}

// EffectiveGlobal reports whether any descriptor along the composition chain
// sets the needs-all-artifacts-processed flag.
func (d *Descriptor) EffectiveGlobal() bool {
	for cur := d; cur != nil; cur = cur.Base {
		if cur.Global {
			return true
		}
	}
	return false
}

// Inspector is one pluggable analysis unit. It examines a single artifact,
// gated by its descriptor's required facts, and reports exactly one outcome
// per invocation. Artifact content reading happens inside Inspect; the
// scheduling core performs no I/O.
type Inspector interface {
	// Name returns the unique inspector identifier.
	Name() string
	// Describe returns the inspector's static fact contract.
	Describe() Descriptor
	// Inspect examines one artifact and returns its outcome. It must not
	// mutate the artifact; produced facts are applied by the orchestrator
	// after a successful outcome.
	Inspect(ctx context.Context, a artifact.Artifact) Outcome
}

// Roster resolves inspector names to inspectors. The catalog implements it;
// the resolver uses it to follow DependsOn references.
type Roster interface {
	ByName(name string) (Inspector, bool)
}
