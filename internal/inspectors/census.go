package inspectors

import (
	"context"

	"miglens/internal/artifact"
	"miglens/internal/inspect"
)

// Census is the aggregate inspector: it runs once at the end of the
// pipeline against the session artifact and records roster-wide totals.
type Census struct{}

// NewCensus creates the census inspector.
func NewCensus() *Census {
	return &Census{}
}

func (c *Census) Name() string { return "census" }

func (c *Census) Describe() inspect.Descriptor {
	return inspect.Descriptor{
		Produces: []string{FactSessionSummed},
		Scope:    inspect.ScopeAggregate,
	}
}

func (c *Census) Inspect(ctx context.Context, a artifact.Artifact) inspect.Outcome {
	s, ok := a.(*artifact.Session)
	if !ok {
		return inspect.NotApplicable()
	}

	factTotals := make(map[string]int)
	for _, f := range s.Files() {
		for _, fact := range f.Facts() {
			factTotals[fact]++
		}
	}
	for _, u := range s.Units() {
		for _, fact := range u.Facts() {
			factTotals[fact]++
		}
	}

	tagged := 0
	for _, f := range s.Files() {
		if len(f.Facts()) > 0 {
			tagged++
		}
	}

	return inspect.Success(map[string]any{
		"files":        len(s.Files()),
		"units":        len(s.Units()),
		"tagged_files": tagged,
		"fact_totals":  factTotals,
	})
}
