package topology

import (
	"errors"
	"fmt"

	"topomon/internal/domain"
)

// ErrNoPath is returned when source and target exist but are disconnected
var ErrNoPath = errors.New("no path between nodes")

// ErrUnknownNode is returned when a queried node is not in the graph
var ErrUnknownNode = errors.New("unknown node")

// Defaults for bounded path enumeration
const (
	DefaultMaxPathDepth = 10
	DefaultMaxPaths     = 100
)

// ShortestPath returns a minimum-hop path from source to target as an
// ordered node sequence. Ties break toward the path found first under
// ascending neighbor order, so results are stable across runs.
func ShortestPath(g *domain.Graph, source, target string) ([]string, error) {
	if !g.HasNode(source) {
		return nil, fmt.Errorf("source %s: %w", source, ErrUnknownNode)
	}
	if !g.HasNode(target) {
		return nil, fmt.Errorf("target %s: %w", target, ErrUnknownNode)
	}
	if source == target {
		return []string{source}, nil
	}

	parent := map[string]string{source: ""}
	queue := []string{source}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, next := range g.Neighbors(node) {
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = node
			if next == target {
				return tracePath(parent, source, target), nil
			}
			queue = append(queue, next)
		}
	}
	return nil, fmt.Errorf("%s to %s: %w", source, target, ErrNoPath)
}

// tracePath rebuilds the node sequence from the BFS parent map
func tracePath(parent map[string]string, source, target string) []string {
	var rev []string
	for node := target; node != ""; node = parent[node] {
		rev = append(rev, node)
	}
	path := make([]string, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		path = append(path, rev[i])
	}
	return path
}

// AllSimplePaths enumerates paths from source to target that repeat no
// node. maxDepth bounds path length in hops and maxPaths bounds the
// result count; hitting either bound truncates the enumeration instead
// of failing, reported through the truncated flag. Zero or negative
// bounds fall back to the defaults.
func AllSimplePaths(g *domain.Graph, source, target string, maxDepth, maxPaths int) (paths [][]string, truncated bool, err error) {
	if !g.HasNode(source) {
		return nil, false, fmt.Errorf("source %s: %w", source, ErrUnknownNode)
	}
	if !g.HasNode(target) {
		return nil, false, fmt.Errorf("target %s: %w", target, ErrUnknownNode)
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxPathDepth
	}
	if maxPaths <= 0 {
		maxPaths = DefaultMaxPaths
	}

	onPath := map[string]bool{source: true}
	current := []string{source}

	var walk func(node string)
	walk = func(node string) {
		if len(paths) >= maxPaths {
			truncated = true
			return
		}
		if node == target {
			paths = append(paths, append([]string(nil), current...))
			return
		}
		if len(current)-1 >= maxDepth {
			truncated = true
			return
		}
		for _, next := range g.Neighbors(node) {
			if onPath[next] {
				continue
			}
			onPath[next] = true
			current = append(current, next)
			walk(next)
			current = current[:len(current)-1]
			onPath[next] = false
			if len(paths) >= maxPaths {
				truncated = true
				return
			}
		}
	}
	walk(source)

	return paths, truncated, nil
}

// Bridges returns the critical links: edges whose removal disconnects the
// graph, found with a DFS low-link traversal. A node pair joined on more
// than one layer keeps the pair connected if either edge goes away, so
// none of its edges can be a bridge. Results come out in canonical order.
func Bridges(g *domain.Graph) []domain.LinkKey {
	disc := make(map[string]int, len(g.Nodes))
	low := make(map[string]int, len(g.Nodes))
	clock := 0

	type frame struct {
		node      string
		parent    string
		neighbors []string
		next      int
	}

	var out []domain.LinkKey
	for _, start := range g.NodeKeys() {
		if _, seen := disc[start]; seen {
			continue
		}
		clock++
		disc[start], low[start] = clock, clock
		stack := []frame{{node: start, neighbors: g.Neighbors(start)}}

		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			if f.next < len(f.neighbors) {
				w := f.neighbors[f.next]
				f.next++
				if _, seen := disc[w]; !seen {
					clock++
					disc[w], low[w] = clock, clock
					stack = append(stack, frame{node: w, parent: f.node, neighbors: g.Neighbors(w)})
				} else if w != f.parent && disc[w] < low[f.node] {
					low[f.node] = disc[w]
				}
				continue
			}

			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				continue
			}
			p := &stack[len(stack)-1]
			if low[f.node] < low[p.node] {
				low[p.node] = low[f.node]
			}
			if low[f.node] > disc[p.node] && g.PairEdgeCount(p.node, f.node) == 1 {
				for _, link := range g.LinksBetween(p.node, f.node) {
					out = append(out, link.Key)
				}
			}
		}
	}

	domain.SortLinkKeys(out)
	return out
}
