package audit

import (
	"context"
	"reflect"
	"testing"

	"miglens/internal/artifact"
	"miglens/internal/inspect"
)

// declInspector is a descriptor-only inspector for audit tests.
type declInspector struct {
	name string
	desc inspect.Descriptor
}

func (d *declInspector) Name() string { return d.name }

func (d *declInspector) Describe() inspect.Descriptor { return d.desc }

func (d *declInspector) Inspect(ctx context.Context, a artifact.Artifact) inspect.Outcome {
	return inspect.NotApplicable()
}

func buildAudit(t *testing.T, opts Options, inspectors ...inspect.Inspector) *Result {
	t.Helper()
	catalog := inspect.NewCatalog(inspectors...)
	resolver := inspect.NewResolver(catalog, nil)
	res, err := NewBuilder(catalog, resolver, opts).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return res
}

func TestBuild_ConsolidatedEdges(t *testing.T) {
	res := buildAudit(t, Options{},
		&declInspector{name: "p", desc: inspect.Descriptor{Produces: []string{"x", "y"}}},
		&declInspector{name: "q", desc: inspect.Descriptor{Requires: []string{"x", "y"}}},
	)

	// Two shared facts collapse into exactly one p→q edge.
	if len(res.Graph.Edges) != 1 {
		t.Fatalf("got %d edges, want 1: %+v", len(res.Graph.Edges), res.Graph.Edges)
	}
	e := res.Graph.Edges[0]
	if e.Producer != "p" || e.Consumer != "q" {
		t.Errorf("edge = %s->%s, want p->q", e.Producer, e.Consumer)
	}
	if !reflect.DeepEqual(e.Facts, []string{"x", "y"}) {
		t.Errorf("edge facts = %v, want [x y]", e.Facts)
	}
}

func TestBuild_SelfReferenceContributesNoEdge(t *testing.T) {
	res := buildAudit(t, Options{},
		&declInspector{name: "loop", desc: inspect.Descriptor{
			Requires: []string{"x"}, Produces: []string{"x"},
		}},
	)
	if len(res.Graph.Edges) != 0 {
		t.Errorf("self-referencing inspector produced edges: %+v", res.Graph.Edges)
	}
}

func TestBuild_UnusedFacts(t *testing.T) {
	res := buildAudit(t, Options{},
		&declInspector{name: "p", desc: inspect.Descriptor{Produces: []string{"CONSUMED", "ORPHANED"}}},
		&declInspector{name: "q", desc: inspect.Descriptor{Requires: []string{"CONSUMED"}}},
	)

	if !reflect.DeepEqual(res.Unused, []string{"ORPHANED"}) {
		t.Errorf("Unused = %v, want [ORPHANED]", res.Unused)
	}
}

func TestBuild_NodesCarryResolvedSets(t *testing.T) {
	base := &inspect.Descriptor{Requires: []string{"a"}}
	res := buildAudit(t, Options{},
		&declInspector{name: "child", desc: inspect.Descriptor{
			Requires: []string{"b"}, Produces: []string{"c"}, Base: base,
		}},
	)

	if len(res.Graph.Nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(res.Graph.Nodes))
	}
	n := res.Graph.Nodes[0]
	if !reflect.DeepEqual(n.Requires, []string{"a", "b"}) {
		t.Errorf("node requires = %v, want the full composition chain [a b]", n.Requires)
	}
	if !reflect.DeepEqual(n.Produces, []string{"c"}) {
		t.Errorf("node produces = %v, want [c]", n.Produces)
	}
}

func TestBuild_NodesSortedByName(t *testing.T) {
	res := buildAudit(t, Options{},
		&declInspector{name: "zeta", desc: inspect.Descriptor{}},
		&declInspector{name: "alpha", desc: inspect.Descriptor{}},
		&declInspector{name: "mid", desc: inspect.Descriptor{}},
	)

	var got []string
	for _, n := range res.Graph.Nodes {
		got = append(got, n.Name)
	}
	if !reflect.DeepEqual(got, []string{"alpha", "mid", "zeta"}) {
		t.Errorf("node order = %v, want sorted", got)
	}
}

func TestBuild_EmptyCatalog(t *testing.T) {
	res := buildAudit(t, Options{})
	if len(res.Graph.Nodes) != 0 || len(res.Graph.Edges) != 0 {
		t.Error("empty catalog should yield an empty graph")
	}
	if len(res.Unused) != 0 || len(res.Duplicates) != 0 || len(res.Chains) != 0 {
		t.Error("empty catalog should yield no findings")
	}
}

func TestBuild_ChainAcrossInspectors(t *testing.T) {
	res := buildAudit(t, Options{MinChainLength: 3},
		&declInspector{name: "a", desc: inspect.Descriptor{Produces: []string{"f1"}}},
		&declInspector{name: "b", desc: inspect.Descriptor{Requires: []string{"f1"}, Produces: []string{"f2"}}},
		&declInspector{name: "c", desc: inspect.Descriptor{Requires: []string{"f2"}}},
	)

	if len(res.Chains) != 1 {
		t.Fatalf("got %d chains, want 1: %+v", len(res.Chains), res.Chains)
	}
	if !reflect.DeepEqual(res.Chains[0].Path, []string{"a", "b", "c"}) {
		t.Errorf("chain path = %v, want [a b c]", res.Chains[0].Path)
	}
	if res.Chains[0].Length != 3 {
		t.Errorf("chain length = %d, want 3", res.Chains[0].Length)
	}
}
