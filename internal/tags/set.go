package tags

import "strings"

// Set is an ordered, deduplicated collection of fact identifiers.
// Facts are opaque, case-sensitive strings; first-seen order is preserved.
// Blank and whitespace-only entries are silently dropped so callers composing
// dependencies from several declaration sources need no pre-validation.
type Set struct {
	order []string
	index map[string]struct{}
}

// New creates an empty Set.
func New() *Set {
	return &Set{index: make(map[string]struct{})}
}

// Of creates a Set containing the given facts.
func Of(facts ...string) *Set {
	s := New()
	s.AddAll(facts...)
	return s
}

// Add inserts a fact into the set. Blank input and duplicates are ignored.
func (s *Set) Add(fact string) {
	fact = strings.TrimSpace(fact)
	if fact == "" {
		return
	}
	if _, ok := s.index[fact]; ok {
		return
	}
	s.index[fact] = struct{}{}
	s.order = append(s.order, fact)
}

// AddAll inserts each of the given facts.
func (s *Set) AddAll(facts ...string) {
	for _, f := range facts {
		s.Add(f)
	}
}

// Merge inserts every fact from other. A nil other is a no-op.
func (s *Set) Merge(other *Set) {
	if other == nil {
		return
	}
	for _, f := range other.order {
		s.Add(f)
	}
}

// Contains reports whether the set holds the exact fact string.
func (s *Set) Contains(fact string) bool {
	_, ok := s.index[strings.TrimSpace(fact)]
	return ok
}

// Slice returns the facts in insertion order as a fresh slice.
func (s *Set) Slice() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of facts in the set.
func (s *Set) Len() int {
	return len(s.order)
}

// IsEmpty reports whether the set holds no facts.
func (s *Set) IsEmpty() bool {
	return len(s.order) == 0
}

// Clone returns an independent copy of the set.
func (s *Set) Clone() *Set {
	c := New()
	c.Merge(s)
	return c
}

// Equal reports whether both sets contain exactly the same facts,
// regardless of insertion order.
func (s *Set) Equal(other *Set) bool {
	if other == nil {
		return s.Len() == 0
	}
	if s.Len() != other.Len() {
		return false
	}
	for f := range s.index {
		if _, ok := other.index[f]; !ok {
			return false
		}
	}
	return true
}
