package topology

import (
	"reflect"
	"testing"
	"time"

	"topomon/internal/domain"
)

func TestDiffSelfIsEmpty(t *testing.T) {
	g := graphOf(t, "a-b", "b-c")
	change := Diff(g, g, time.Now())
	if !change.Empty() {
		t.Errorf("diff of a graph against itself must be empty, got %+v", change)
	}
}

func TestDiffAdditionsAndRemovals(t *testing.T) {
	prev := graphOf(t, "a-b")
	next := graphOf(t, "a-b", "b-c")

	change := Diff(prev, next, time.Now())
	if !reflect.DeepEqual(change.AddedNodes, []string{"c"}) {
		t.Errorf("expected added node c, got %v", change.AddedNodes)
	}
	if len(change.AddedLinks) != 1 || !change.AddedLinks[0].Touches("c") {
		t.Errorf("expected one added link touching c, got %v", change.AddedLinks)
	}
	if len(change.RemovedNodes) != 0 || len(change.RemovedLinks) != 0 {
		t.Errorf("unexpected removals: %+v", change)
	}

	// The reverse direction mirrors the categories
	back := Diff(next, prev, time.Now())
	if !reflect.DeepEqual(back.RemovedNodes, []string{"c"}) {
		t.Errorf("expected removed node c, got %v", back.RemovedNodes)
	}
	if len(back.RemovedLinks) != 1 {
		t.Errorf("expected one removed link, got %v", back.RemovedLinks)
	}
}

func TestDiffModifiedLink(t *testing.T) {
	prev := domain.NewGraph()
	prev.MergeRecord(domain.NeighborRecord{
		Device: "a", Neighbor: "b", LocalInterface: "eth0", RemoteInterface: "eth1",
		Kind: domain.LinkKindPhysical, Layer: domain.LayerL2,
	})

	next := domain.NewGraph()
	next.MergeRecord(domain.NeighborRecord{
		Device: "a", Neighbor: "b", LocalInterface: "eth0", RemoteInterface: "eth1",
		Kind: domain.LinkKindPhysical, Layer: domain.LayerL2,
	})
	next.MergeRecord(domain.NeighborRecord{
		Device: "a", Neighbor: "b", LocalInterface: "eth4", RemoteInterface: "eth5",
		Kind: domain.LinkKindPhysical, Layer: domain.LayerL2,
	})

	at := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	change := Diff(prev, next, at)

	if len(change.AddedLinks) != 0 || len(change.RemovedLinks) != 0 {
		t.Errorf("identity did not change, got %+v", change)
	}
	if len(change.ModifiedLinks) != 1 {
		t.Fatalf("expected 1 modified link, got %d", len(change.ModifiedLinks))
	}

	mod := change.ModifiedLinks[0]
	if mod.Key != domain.NewLinkKey("a", "b", domain.LayerL2) {
		t.Errorf("unexpected key: %v", mod.Key)
	}
	if len(mod.Before.Interfaces) != 1 || len(mod.After.Interfaces) != 2 {
		t.Errorf("expected both attribute sets, before=%d after=%d",
			len(mod.Before.Interfaces), len(mod.After.Interfaces))
	}
	if !change.Timestamp.Equal(at) {
		t.Errorf("expected timestamp %s, got %s", at, change.Timestamp)
	}

	// Carried attribute sets are copies, not aliases into the graphs
	mod.After.Interfaces[0].Local = "mutated"
	if next.Edges[mod.Key].Interfaces[0].Local == "mutated" {
		t.Error("modified entry aliases the live graph")
	}
}
