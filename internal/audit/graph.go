// Package audit performs the ecosystem-level static review of the inspector
// roster's declared fact contracts: a producer/consumer graph with
// consolidated edges, unused-fact detection, near-duplicate fact mining, and
// long dependency chain discovery. Its findings are advisory architecture
// review material; runtime scheduling never consults them.
package audit

import (
	"fmt"
	"sort"

	"miglens/internal/inspect"
	"miglens/internal/tags"
)

// Node is the audit read-model for one inspector: its identity plus its
// fully resolved required and produced fact sets.
type Node struct {
	Name     string   `json:"name"`
	Requires []string `json:"requires,omitempty"`
	Produces []string `json:"produces,omitempty"`
}

// Edge is a directed producer→consumer relation between two distinct
// inspectors. Every fact the pair shares collapses into this one edge; there
// are never parallel single-fact edges.
type Edge struct {
	Producer string   `json:"producer"`
	Consumer string   `json:"consumer"`
	Facts    []string `json:"facts"`
}

// Graph is the built dependency multigraph.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
	// Producers maps each fact to the inspectors producing it.
	Producers map[string][]string `json:"producers"`
	// Consumers maps each fact to the inspectors consuming it.
	Consumers map[string][]string `json:"consumers"`
}

// Result is the full audit snapshot. It is rebuilt from scratch on every
// audit and never persisted across runs.
type Result struct {
	Graph      *Graph           `json:"graph"`
	Unused     []string         `json:"unused_facts,omitempty"`
	Duplicates []DuplicateGroup `json:"duplicate_groups,omitempty"`
	Chains     []Chain          `json:"chains,omitempty"`
}

// Options tunes the audit analyses.
type Options struct {
	// MinChainLength is the minimum number of inspectors a dependency chain
	// must span to be reported.
	MinChainLength int
}

// Builder assembles the audit result for one catalog.
type Builder struct {
	catalog  *inspect.Catalog
	resolver *inspect.Resolver
	opts     Options
}

// NewBuilder creates an audit builder over the given catalog and resolver.
func NewBuilder(catalog *inspect.Catalog, resolver *inspect.Resolver, opts Options) *Builder {
	if opts.MinChainLength <= 0 {
		opts.MinChainLength = 3
	}
	return &Builder{catalog: catalog, resolver: resolver, opts: opts}
}

// Build resolves every inspector's fact sets, constructs the consolidated
// producer/consumer graph, and runs all analyses.
func (b *Builder) Build() (*Result, error) {
	graph, producedBy, err := b.buildGraph()
	if err != nil {
		return nil, err
	}

	res := &Result{
		Graph:      graph,
		Unused:     unusedFacts(graph),
		Duplicates: findDuplicates(allFacts(graph), graph.Producers, producedBy),
		Chains:     findChains(graph, b.opts.MinChainLength),
	}
	return res, nil
}

// buildGraph resolves every roster entry and materializes nodes, fact maps,
// and consolidated edges. producedBy maps inspector name → produced facts,
// kept for the same-producer duplicate strategy.
func (b *Builder) buildGraph() (*Graph, map[string][]string, error) {
	roster := b.catalog.All()
	sort.Slice(roster, func(i, j int) bool { return roster[i].Name() < roster[j].Name() })

	g := &Graph{
		Producers: make(map[string][]string),
		Consumers: make(map[string][]string),
	}
	producedBy := make(map[string][]string, len(roster))

	for _, ins := range roster {
		required, err := b.resolver.Resolve(ins.Name())
		if err != nil {
			return nil, nil, fmt.Errorf("resolving %s: %w", ins.Name(), err)
		}
		produced, err := b.resolver.Produced(ins.Name())
		if err != nil {
			return nil, nil, fmt.Errorf("resolving %s: %w", ins.Name(), err)
		}

		g.Nodes = append(g.Nodes, Node{
			Name:     ins.Name(),
			Requires: required.Slice(),
			Produces: produced.Slice(),
		})
		producedBy[ins.Name()] = produced.Slice()

		for _, fact := range produced.Slice() {
			g.Producers[fact] = append(g.Producers[fact], ins.Name())
		}
		for _, fact := range required.Slice() {
			g.Consumers[fact] = append(g.Consumers[fact], ins.Name())
		}
	}

	g.Edges = consolidateEdges(g)
	return g, producedBy, nil
}

type pair struct {
	producer string
	consumer string
}

// consolidateEdges builds exactly one edge per distinct (producer, consumer)
// pair, accumulating every fact that justifies the relation. Self-references
// contribute no edge, and a fact lacking either a producer or a consumer
// contributes nothing.
func consolidateEdges(g *Graph) []Edge {
	byPair := make(map[pair]*tags.Set)

	facts := make([]string, 0, len(g.Producers))
	for fact := range g.Producers {
		facts = append(facts, fact)
	}
	sort.Strings(facts)

	for _, fact := range facts {
		consumers := g.Consumers[fact]
		if len(consumers) == 0 {
			continue
		}
		for _, producer := range g.Producers[fact] {
			for _, consumer := range consumers {
				if producer == consumer {
					continue
				}
				key := pair{producer, consumer}
				if byPair[key] == nil {
					byPair[key] = tags.New()
				}
				byPair[key].Add(fact)
			}
		}
	}

	edges := make([]Edge, 0, len(byPair))
	for key, set := range byPair {
		facts := set.Slice()
		sort.Strings(facts)
		edges = append(edges, Edge{Producer: key.producer, Consumer: key.consumer, Facts: facts})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Producer != edges[j].Producer {
			return edges[i].Producer < edges[j].Producer
		}
		return edges[i].Consumer < edges[j].Consumer
	})
	return edges
}

// unusedFacts returns every produced fact no inspector consumes, sorted.
func unusedFacts(g *Graph) []string {
	var unused []string
	for fact := range g.Producers {
		if len(g.Consumers[fact]) == 0 {
			unused = append(unused, fact)
		}
	}
	sort.Strings(unused)
	return unused
}

// allFacts returns the sorted union of produced and consumed fact names.
// Sorting keeps the overlap-merge of duplicate groups reproducible.
func allFacts(g *Graph) []string {
	seen := make(map[string]struct{})
	for fact := range g.Producers {
		seen[fact] = struct{}{}
	}
	for fact := range g.Consumers {
		seen[fact] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for fact := range seen {
		out = append(out, fact)
	}
	sort.Strings(out)
	return out
}
