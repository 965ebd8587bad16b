package domain

import (
	"reflect"
	"testing"
)

func TestGraphMergeRecord(t *testing.T) {
	t.Run("creates both endpoints", func(t *testing.T) {
		g := NewGraph()
		err := g.MergeRecord(NeighborRecord{
			Device: "10.0.0.1", Neighbor: "10.0.0.2",
			Kind: LinkKindPhysical, Layer: LayerL2,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !g.HasNode("10.0.0.1") || !g.HasNode("10.0.0.2") {
			t.Error("expected both endpoints to be created")
		}
		if len(g.Edges) != 1 {
			t.Errorf("expected 1 edge, got %d", len(g.Edges))
		}
	})

	t.Run("rejects malformed records", func(t *testing.T) {
		g := NewGraph()
		if err := g.MergeRecord(NeighborRecord{Device: "a", Neighbor: "a", Layer: LayerL2}); err == nil {
			t.Error("expected self-loop to be rejected")
		}
		if len(g.Nodes) != 0 || len(g.Edges) != 0 {
			t.Error("expected rejected record to leave graph untouched")
		}
	})

	t.Run("duplicate pair and layer collapses to one edge", func(t *testing.T) {
		g := NewGraph()
		g.MergeRecord(NeighborRecord{
			Device: "a", Neighbor: "b",
			LocalInterface: "eth0", RemoteInterface: "eth1",
			Kind: LinkKindPhysical, Layer: LayerL2, Protocol: "lldp",
		})
		g.MergeRecord(NeighborRecord{
			Device: "b", Neighbor: "a",
			LocalInterface: "eth3", RemoteInterface: "eth2",
			Kind: LinkKindPhysical, Layer: LayerL2, Protocol: "cdp",
		})

		if len(g.Edges) != 1 {
			t.Fatalf("expected 1 merged edge, got %d", len(g.Edges))
		}
		link := g.Edges[NewLinkKey("a", "b", LayerL2)]
		if len(link.Interfaces) != 2 {
			t.Errorf("expected both interface pairs retained, got %v", link.Interfaces)
		}
	})

	t.Run("same pair on different layers keeps two edges", func(t *testing.T) {
		g := NewGraph()
		g.MergeRecord(NeighborRecord{Device: "a", Neighbor: "b", Kind: LinkKindPhysical, Layer: LayerL2})
		g.MergeRecord(NeighborRecord{Device: "a", Neighbor: "b", Kind: LinkKindLogical, Layer: LayerL3})

		if len(g.Edges) != 2 {
			t.Errorf("expected 2 edges across layers, got %d", len(g.Edges))
		}
		if g.PairEdgeCount("a", "b") != 2 {
			t.Errorf("expected pair edge count 2, got %d", g.PairEdgeCount("a", "b"))
		}
	})
}

func TestGraphMergeIdempotent(t *testing.T) {
	records := []NeighborRecord{
		{Device: "c", Neighbor: "a", LocalInterface: "e2", RemoteInterface: "e3", Kind: LinkKindLogical, Layer: LayerL3, Metrics: map[string]any{"m": 1}},
		{Device: "a", Neighbor: "b", LocalInterface: "e0", RemoteInterface: "e1", Kind: LinkKindPhysical, Layer: LayerL2, Metrics: map[string]any{"m": 2}},
		{Device: "b", Neighbor: "a", LocalInterface: "e1", RemoteInterface: "e0", Kind: LinkKindVLAN, Layer: LayerL2, VLAN: 7},
		{Device: "b", Neighbor: "c", Kind: LinkKindPhysical, Layer: LayerL2},
	}

	build := func(recs []NeighborRecord) *Graph {
		sorted := append([]NeighborRecord(nil), recs...)
		SortRecords(sorted)
		g := NewGraph()
		for _, r := range sorted {
			if err := g.MergeRecord(r); err != nil {
				t.Fatalf("merge failed: %v", err)
			}
		}
		return g
	}

	t.Run("merging twice yields attribute-identical graph", func(t *testing.T) {
		once := build(records)
		twice := build(append(append([]NeighborRecord(nil), records...), records...))

		assertGraphsEqual(t, once, twice)
	})

	t.Run("record order does not matter", func(t *testing.T) {
		reversed := make([]NeighborRecord, 0, len(records))
		for i := len(records) - 1; i >= 0; i-- {
			reversed = append(reversed, records[i])
		}
		assertGraphsEqual(t, build(records), build(reversed))
	})
}

func TestGraphUnion(t *testing.T) {
	l2 := NewGraph()
	l2.MergeRecord(NeighborRecord{Device: "a", Neighbor: "b", Kind: LinkKindPhysical, Layer: LayerL2})

	l3 := NewGraph()
	l3.MergeRecord(NeighborRecord{Device: "b", Neighbor: "c", Kind: LinkKindLogical, Layer: LayerL3})
	l3.MergeRecord(NeighborRecord{Device: "a", Neighbor: "b", Kind: LinkKindLogical, Layer: LayerL3})

	unified := NewGraph()
	unified.Union(l2)
	unified.Union(l3)

	t.Run("nodes contribute once", func(t *testing.T) {
		if len(unified.Nodes) != 3 {
			t.Errorf("expected 3 nodes, got %d", len(unified.Nodes))
		}
	})

	t.Run("edges keep layer identity", func(t *testing.T) {
		if len(unified.Edges) != 3 {
			t.Errorf("expected 3 edges, got %d", len(unified.Edges))
		}
	})

	t.Run("union does not alias source graphs", func(t *testing.T) {
		unified.Edges[NewLinkKey("a", "b", LayerL2)].Status = "down"
		if l2.Edges[NewLinkKey("a", "b", LayerL2)].Status == "down" {
			t.Error("expected union to copy links, not alias them")
		}
	})
}

func TestGraphNeighbors(t *testing.T) {
	g := NewGraph()
	g.MergeRecord(NeighborRecord{Device: "n1", Neighbor: "n3", Kind: LinkKindPhysical, Layer: LayerL2})
	g.MergeRecord(NeighborRecord{Device: "n1", Neighbor: "n2", Kind: LinkKindPhysical, Layer: LayerL2})
	g.MergeRecord(NeighborRecord{Device: "n2", Neighbor: "n1", Kind: LinkKindLogical, Layer: LayerL3})

	t.Run("sorted ascending", func(t *testing.T) {
		want := []string{"n2", "n3"}
		if got := g.Neighbors("n1"); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("no duplicates across layers", func(t *testing.T) {
		if got := g.Neighbors("n2"); !reflect.DeepEqual(got, []string{"n1"}) {
			t.Errorf("expected [n1], got %v", got)
		}
	})

	t.Run("unknown node has no neighbors", func(t *testing.T) {
		if got := g.Neighbors("missing"); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})
}

func TestGraphLinksTouching(t *testing.T) {
	g := NewGraph()
	g.MergeRecord(NeighborRecord{Device: "a", Neighbor: "b", Kind: LinkKindPhysical, Layer: LayerL2})
	g.MergeRecord(NeighborRecord{Device: "b", Neighbor: "c", Kind: LinkKindPhysical, Layer: LayerL2})
	g.MergeRecord(NeighborRecord{Device: "a", Neighbor: "c", Kind: LinkKindLogical, Layer: LayerL3})

	keys := g.LinksTouching("c")
	if len(keys) != 2 {
		t.Fatalf("expected 2 links touching c, got %d", len(keys))
	}
	for _, k := range keys {
		if !k.Touches("c") {
			t.Errorf("key %v does not touch c", k)
		}
	}
}

// assertGraphsEqual compares two graphs structurally and by attributes
func assertGraphsEqual(t *testing.T, a, b *Graph) {
	t.Helper()

	if !reflect.DeepEqual(a.NodeKeys(), b.NodeKeys()) {
		t.Fatalf("node sets differ: %v vs %v", a.NodeKeys(), b.NodeKeys())
	}
	if !reflect.DeepEqual(a.LinkKeys(), b.LinkKeys()) {
		t.Fatalf("edge sets differ: %v vs %v", a.LinkKeys(), b.LinkKeys())
	}
	for _, key := range a.LinkKeys() {
		if !a.Edges[key].AttributesEqual(b.Edges[key]) {
			t.Errorf("edge %v attributes differ: %+v vs %+v", key, a.Edges[key], b.Edges[key])
		}
	}
}
