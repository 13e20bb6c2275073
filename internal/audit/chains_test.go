package audit

import (
	"reflect"
	"testing"
)

func graphOf(nodes []string, edges ...Edge) *Graph {
	g := &Graph{
		Producers: map[string][]string{},
		Consumers: map[string][]string{},
	}
	for _, n := range nodes {
		g.Nodes = append(g.Nodes, Node{Name: n})
	}
	g.Edges = edges
	return g
}

func paths(chains []Chain) [][]string {
	out := make([][]string, len(chains))
	for i, c := range chains {
		out[i] = c.Path
	}
	return out
}

func TestFindChains_MinLength(t *testing.T) {
	// a -> b -> c spans three inspectors; d -> e only two.
	g := graphOf([]string{"a", "b", "c", "d", "e"},
		Edge{Producer: "a", Consumer: "b", Facts: []string{"f1"}},
		Edge{Producer: "b", Consumer: "c", Facts: []string{"f2"}},
		Edge{Producer: "d", Consumer: "e", Facts: []string{"f3"}},
	)

	chains := findChains(g, 3)
	want := [][]string{{"a", "b", "c"}}
	if !reflect.DeepEqual(paths(chains), want) {
		t.Errorf("chains = %v, want %v", paths(chains), want)
	}

	// Lowering the threshold admits the short path too.
	chains = findChains(g, 2)
	want = [][]string{{"a", "b", "c"}, {"d", "e"}}
	if !reflect.DeepEqual(paths(chains), want) {
		t.Errorf("chains = %v, want %v", paths(chains), want)
	}
}

func TestFindChains_BranchingRecordsEveryPath(t *testing.T) {
	g := graphOf([]string{"root", "left", "right", "leaf"},
		Edge{Producer: "root", Consumer: "left"},
		Edge{Producer: "root", Consumer: "right"},
		Edge{Producer: "left", Consumer: "leaf"},
		Edge{Producer: "right", Consumer: "leaf"},
	)

	chains := findChains(g, 3)
	want := [][]string{{"root", "left", "leaf"}, {"root", "right", "leaf"}}
	if !reflect.DeepEqual(paths(chains), want) {
		t.Errorf("chains = %v, want %v", paths(chains), want)
	}
}

func TestFindChains_CycleTerminates(t *testing.T) {
	// entry -> a -> b -> a is a cycle; the walk must stop at the revisit
	// instead of looping, recording the path walked so far.
	g := graphOf([]string{"entry", "a", "b"},
		Edge{Producer: "entry", Consumer: "a"},
		Edge{Producer: "a", Consumer: "b"},
		Edge{Producer: "b", Consumer: "a"},
	)

	chains := findChains(g, 3)
	want := [][]string{{"entry", "a", "b"}}
	if !reflect.DeepEqual(paths(chains), want) {
		t.Errorf("chains = %v, want %v", paths(chains), want)
	}
}

func TestFindChains_PureCycleHasNoRoots(t *testing.T) {
	// Every vertex has an incoming edge, so there is no root to walk from.
	g := graphOf([]string{"a", "b"},
		Edge{Producer: "a", Consumer: "b"},
		Edge{Producer: "b", Consumer: "a"},
	)

	if chains := findChains(g, 2); len(chains) != 0 {
		t.Errorf("pure cycle produced chains: %v", paths(chains))
	}
}

func TestFindChains_RevisitAllowedAcrossPaths(t *testing.T) {
	// "shared" sits on two distinct paths; the per-path visited set must not
	// block the second traversal.
	g := graphOf([]string{"a", "b", "shared", "tail"},
		Edge{Producer: "a", Consumer: "shared"},
		Edge{Producer: "b", Consumer: "shared"},
		Edge{Producer: "shared", Consumer: "tail"},
	)

	chains := findChains(g, 3)
	want := [][]string{{"a", "shared", "tail"}, {"b", "shared", "tail"}}
	if !reflect.DeepEqual(paths(chains), want) {
		t.Errorf("chains = %v, want %v", paths(chains), want)
	}
}
