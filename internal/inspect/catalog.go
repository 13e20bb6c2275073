package inspect

import (
	"fmt"
	"sync"
)

// Catalog holds the full inspector roster for one analysis session and
// exposes the phase partitions the orchestrator schedules from. It is
// session-scoped: a new session builds a fresh catalog; nothing in it
// survives across sessions.
//
// Classification is derived once from static descriptor data when the
// roster changes and never varies during a session. Every inspector lands
// in exactly one partition.
type Catalog struct {
	mu     sync.RWMutex
	roster []Inspector
	byName map[string]Inspector

	fileMain  []Inspector
	fileFinal []Inspector
	unitMain  []Inspector
	unitFinal []Inspector
	aggregate []Inspector
}

// NewCatalog creates a catalog over the given roster and derives its
// partitions.
func NewCatalog(roster ...Inspector) *Catalog {
	c := &Catalog{byName: make(map[string]Inspector)}
	for _, ins := range roster {
		c.add(ins)
	}
	c.partition()
	return c
}

// Register instantiates an additional inspector through the factory and adds
// it to the roster, re-deriving the partitions. Any factory failure is
// wrapped into a single RegistrationError regardless of the underlying
// cause.
func (c *Catalog) Register(factory func() (Inspector, error)) error {
	ins, err := factory()
	if err != nil {
		return &RegistrationError{Err: err}
	}
	if ins == nil {
		return &RegistrationError{Err: fmt.Errorf("factory returned no inspector")}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.add(ins)
	c.partition()
	return nil
}

// add appends to the roster; a duplicate name replaces the lookup entry but
// keeps the roster order of the first registration.
func (c *Catalog) add(ins Inspector) {
	if _, seen := c.byName[ins.Name()]; !seen {
		c.roster = append(c.roster, ins)
	} else {
		for i, existing := range c.roster {
			if existing.Name() == ins.Name() {
				c.roster[i] = ins
				break
			}
		}
	}
	c.byName[ins.Name()] = ins
}

// partition classifies the roster into the five scheduling partitions using
// the effective scope and global flag of each descriptor chain, so derived
// descriptors inherit placement from their Base. ScopeAny joins the file
// partitions; ScopeAggregate always lands in the aggregate pass, whatever
// its Global flag says.
func (c *Catalog) partition() {
	c.fileMain = nil
	c.fileFinal = nil
	c.unitMain = nil
	c.unitFinal = nil
	c.aggregate = nil

	for _, ins := range c.roster {
		d := ins.Describe()
		global := d.EffectiveGlobal()
		switch d.EffectiveScope() {
		case ScopeUnit:
			if global {
				c.unitFinal = append(c.unitFinal, ins)
			} else {
				c.unitMain = append(c.unitMain, ins)
			}
		case ScopeAggregate:
			c.aggregate = append(c.aggregate, ins)
		default: // ScopeFile, ScopeAny
			if global {
				c.fileFinal = append(c.fileFinal, ins)
			} else {
				c.fileMain = append(c.fileMain, ins)
			}
		}
	}
}

// ByName returns the inspector with the given name. Absence is a normal
// steady state, reported through the second return value, never an error.
func (c *Catalog) ByName(name string) (Inspector, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ins, ok := c.byName[name]
	return ins, ok
}

// All returns the full roster in registration order.
func (c *Catalog) All() []Inspector {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyRoster(c.roster)
}

// ByScope returns every inspector whose effective scope, after walking the
// descriptor composition chain, matches the given scope.
func (c *Catalog) ByScope(scope Scope) []Inspector {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Inspector
	for _, ins := range c.roster {
		d := ins.Describe()
		if d.EffectiveScope() == scope {
			out = append(out, ins)
		}
	}
	return out
}

// Globals returns every inspector whose descriptor chain sets the
// needs-all-artifacts-processed flag.
func (c *Catalog) Globals() []Inspector {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Inspector
	for _, ins := range c.roster {
		d := ins.Describe()
		if d.EffectiveGlobal() {
			out = append(out, ins)
		}
	}
	return out
}

// FileMain returns the file-level non-global partition: the per-artifact
// main pass for file artifacts.
func (c *Catalog) FileMain() []Inspector {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyRoster(c.fileMain)
}

// FileFinal returns the file-level global partition, run once after the
// file main pass reaches fixpoint.
func (c *Catalog) FileFinal() []Inspector {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyRoster(c.fileFinal)
}

// UnitMain returns the compiled-unit non-global partition.
func (c *Catalog) UnitMain() []Inspector {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyRoster(c.unitMain)
}

// UnitFinal returns the compiled-unit global partition, run once after the
// unit main pass reaches fixpoint.
func (c *Catalog) UnitFinal() []Inspector {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyRoster(c.unitFinal)
}

// AggregatePass returns the aggregate-scope inspectors, run once against the
// session artifact at the end of the pipeline.
func (c *Catalog) AggregatePass() []Inspector {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyRoster(c.aggregate)
}

// Len returns the roster size.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.roster)
}

func copyRoster(in []Inspector) []Inspector {
	out := make([]Inspector, len(in))
	copy(out, in)
	return out
}
