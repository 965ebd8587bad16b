package domain

import "sort"

// Graph is an explicit adjacency structure keyed by node address.
// Edges live in a flat map keyed by (sorted pair, layer), so a pair of
// nodes may carry one edge per layer but never parallel edges within a
// layer: duplicate observations merge at insertion time.
//
// Graph is not safe for concurrent mutation. Built graphs are published
// behind a Snapshot and treated as immutable from then on.
type Graph struct {
	Nodes map[string]*Node
	Edges map[LinkKey]*Link

	// adjacency holds neighbor sets per node, maintained on edge insert
	adjacency map[string]map[string]struct{}
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		Nodes:     make(map[string]*Node),
		Edges:     make(map[LinkKey]*Link),
		adjacency: make(map[string]map[string]struct{}),
	}
}

// EnsureNode returns the node for key, creating a bare one if the key
// has not been seen before
func (g *Graph) EnsureNode(key string) *Node {
	if n, ok := g.Nodes[key]; ok {
		return n
	}
	n := NewNode(key)
	g.Nodes[key] = n
	return n
}

// AddNode inserts a node, enriching an existing node with the same key
// rather than replacing it
func (g *Graph) AddNode(node *Node) {
	if node == nil || node.Key == "" {
		return
	}
	existing := g.EnsureNode(node.Key)
	existing.Enrich(node)
}

// MergeRecord folds one raw observation into the graph (merge-on-write).
// Both endpoints are created if unseen; a second observation of the same
// (pair, layer) merges into the existing link instead of adding an edge.
func (g *Graph) MergeRecord(rec NeighborRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	g.EnsureNode(rec.Device)
	g.EnsureNode(rec.Neighbor)

	key := rec.LinkKey()
	link, ok := g.Edges[key]
	if !ok {
		link = NewLink(key)
		g.Edges[key] = link
		g.connect(key.A, key.B)
	}
	link.MergeRecord(rec)
	return nil
}

// MergeLink folds an already-built link into the graph, merging with an
// existing link of the same key
func (g *Graph) MergeLink(link *Link) {
	if link == nil {
		return
	}
	g.EnsureNode(link.Key.A)
	g.EnsureNode(link.Key.B)

	existing, ok := g.Edges[link.Key]
	if !ok {
		g.Edges[link.Key] = link.Clone()
		g.connect(link.Key.A, link.Key.B)
		return
	}
	existing.MergeLink(link)
}

// Union folds another graph into this one. Nodes enrich by key; links
// merge by (pair, layer) under the same rules as record insertion.
func (g *Graph) Union(other *Graph) {
	if other == nil {
		return
	}
	for _, key := range other.NodeKeys() {
		g.AddNode(other.Nodes[key].Clone())
	}
	for _, key := range other.LinkKeys() {
		g.MergeLink(other.Edges[key])
	}
}

func (g *Graph) connect(a, b string) {
	if g.adjacency[a] == nil {
		g.adjacency[a] = make(map[string]struct{})
	}
	if g.adjacency[b] == nil {
		g.adjacency[b] = make(map[string]struct{})
	}
	g.adjacency[a][b] = struct{}{}
	g.adjacency[b][a] = struct{}{}
}

// HasNode reports whether the node key exists in the graph
func (g *Graph) HasNode(key string) bool {
	_, ok := g.Nodes[key]
	return ok
}

// Neighbors returns the node's neighbors in ascending key order.
// Deterministic iteration order is what makes query results (BFS tie
// breaking in particular) reproducible.
func (g *Graph) Neighbors(key string) []string {
	set := g.adjacency[key]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// NodeKeys returns all node keys in ascending order
func (g *Graph) NodeKeys() []string {
	out := make([]string, 0, len(g.Nodes))
	for k := range g.Nodes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LinkKeys returns all edge identities in canonical order
func (g *Graph) LinkKeys() []LinkKey {
	out := make([]LinkKey, 0, len(g.Edges))
	for k := range g.Edges {
		out = append(out, k)
	}
	SortLinkKeys(out)
	return out
}

// LinksBetween returns the links joining two nodes, one per layer,
// in canonical order
func (g *Graph) LinksBetween(a, b string) []*Link {
	var out []*Link
	for _, layer := range []Layer{LayerL2, LayerL3, LayerL4} {
		if l, ok := g.Edges[NewLinkKey(a, b, layer)]; ok {
			out = append(out, l)
		}
	}
	return out
}

// PairEdgeCount returns how many layers connect two nodes. A pair held
// together by more than one edge can never be a bridge.
func (g *Graph) PairEdgeCount(a, b string) int {
	return len(g.LinksBetween(a, b))
}

// LinksTouching returns the identities of all edges with the node as an
// endpoint, in canonical order
func (g *Graph) LinksTouching(node string) []LinkKey {
	var out []LinkKey
	for k := range g.Edges {
		if k.Touches(node) {
			out = append(out, k)
		}
	}
	SortLinkKeys(out)
	return out
}
