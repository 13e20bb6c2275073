package audit

import "sort"

// Chain is one producer→consumer path through the inspector graph.
type Chain struct {
	Path   []string `json:"path"` // inspector names, producer first
	Length int      `json:"length"`
}

// findChains walks every outgoing path from the graph's zero-in-degree
// vertices and reports the paths spanning at least minLen inspectors.
//
// A path ends at a dead end or when it would revisit a vertex already on the
// current path; the visited set is per path, since the same vertex may be
// legitimately reachable along other paths. A true dependency cycle
// therefore terminates the affected branch instead of looping.
func findChains(g *Graph, minLen int) []Chain {
	adjacency := make(map[string][]string)
	inDegree := make(map[string]int)
	for _, n := range g.Nodes {
		inDegree[n.Name] = 0
	}
	for _, e := range g.Edges {
		adjacency[e.Producer] = append(adjacency[e.Producer], e.Consumer)
		inDegree[e.Consumer]++
	}
	for name := range adjacency {
		sort.Strings(adjacency[name])
	}

	var roots []string
	for _, n := range g.Nodes {
		if inDegree[n.Name] == 0 && len(adjacency[n.Name]) > 0 {
			roots = append(roots, n.Name)
		}
	}
	sort.Strings(roots)

	var chains []Chain
	for _, root := range roots {
		onPath := map[string]bool{root: true}
		walk(adjacency, []string{root}, onPath, minLen, &chains)
	}
	return chains
}

// walk extends path depth-first, recording it once it terminates.
func walk(adjacency map[string][]string, path []string, onPath map[string]bool, minLen int, chains *[]Chain) {
	tip := path[len(path)-1]

	extended := false
	for _, next := range adjacency[tip] {
		if onPath[next] {
			continue // cycle back into the current path
		}
		extended = true
		onPath[next] = true
		walk(adjacency, append(path, next), onPath, minLen, chains)
		delete(onPath, next)
	}

	if !extended && len(path) >= minLen {
		recorded := make([]string, len(path))
		copy(recorded, path)
		*chains = append(*chains, Chain{Path: recorded, Length: len(recorded)})
	}
}
