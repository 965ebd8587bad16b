package topology

import (
	"context"
	"fmt"
	"testing"
	"time"

	"topomon/internal/domain"
	"topomon/internal/inventory"
	"topomon/internal/probe"
)

// stubCollector returns a swappable record set
type stubCollector struct {
	records  []domain.NeighborRecord
	failures []probe.Failure
	err      bool
}

func (c *stubCollector) Collect(ctx context.Context, devices []inventory.Device) ([]domain.NeighborRecord, []probe.Failure) {
	out := make([]domain.NeighborRecord, len(c.records))
	copy(out, c.records)
	domain.SortRecords(out)
	return out, c.failures
}

// failingInventory aborts the build before any records are collected
type failingInventory struct{}

func (failingInventory) Devices(ctx context.Context) ([]inventory.Device, error) {
	return nil, fmt.Errorf("inventory backend unavailable")
}

func triangleRecords() []domain.NeighborRecord {
	return []domain.NeighborRecord{
		{Device: "A", Neighbor: "B", LocalInterface: "eth0", RemoteInterface: "eth1",
			Protocol: "lldp", Kind: domain.LinkKindPhysical, Layer: domain.LayerL2},
		{Device: "B", Neighbor: "C", LocalInterface: "eth2", RemoteInterface: "eth3",
			Protocol: "lldp", Kind: domain.LinkKindPhysical, Layer: domain.LayerL2},
		{Device: "A", Neighbor: "C",
			Protocol: "route", Kind: domain.LinkKindLogical, Layer: domain.LayerL3},
	}
}

func newTestStore(t *testing.T, collector Collector, opts ...StoreOption) *SnapshotStore {
	t.Helper()
	inv, err := inventory.NewStaticSource([]inventory.Device{
		{Key: "A", Kind: domain.DeviceKindRouter},
		{Key: "B", Kind: domain.DeviceKindSwitch},
		{Key: "C", Kind: domain.DeviceKindRouter},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewSnapshotStore(NewBuilder(inv, collector), opts...)
}

func TestBuildTriangleScenario(t *testing.T) {
	collector := &stubCollector{records: triangleRecords()}
	store := newTestStore(t, collector)

	snap, err := store.RequestUpdate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(snap.Unified.Nodes) != 3 {
		t.Errorf("expected 3 nodes, got %d", len(snap.Unified.Nodes))
	}
	if len(snap.Unified.Edges) != 3 {
		t.Errorf("expected 3 edges, got %d", len(snap.Unified.Edges))
	}
	if len(snap.Layer2.Edges) != 2 || len(snap.Layer3.Edges) != 1 {
		t.Errorf("unexpected layer split: l2=%d l3=%d", len(snap.Layer2.Edges), len(snap.Layer3.Edges))
	}

	// Inventory attributes enrich discovered nodes
	if snap.Unified.Nodes["A"].Kind != domain.DeviceKindRouter {
		t.Errorf("expected inventory kind on node A, got %s", snap.Unified.Nodes["A"].Kind)
	}

	// The direct layer-3 edge beats the two-hop layer-2 route
	path, err := ShortestPath(snap.Unified, "A", "C")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(path) != 2 || path[0] != "A" || path[1] != "C" {
		t.Errorf("expected direct path [A C], got %v", path)
	}
}

func TestBuildMembershipFollowsDiscovery(t *testing.T) {
	collector := &stubCollector{records: triangleRecords()}
	inv, err := inventory.NewStaticSource([]inventory.Device{
		{Key: "A", Kind: domain.DeviceKindRouter},
		{Key: "B"},
		{Key: "C"},
		{Key: "D", Kind: domain.DeviceKindFirewall},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap, _, err := NewBuilder(inv, collector).Build(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// D is probed but nothing links to it, so it is not a graph node
	if snap.Unified.HasNode("D") {
		t.Error("unlinked inventory device must not appear in the snapshot")
	}
	if len(snap.Unified.Nodes) != 3 {
		t.Errorf("expected 3 nodes, got %d", len(snap.Unified.Nodes))
	}
}

func TestStoreGating(t *testing.T) {
	collector := &stubCollector{records: triangleRecords()}
	store := newTestStore(t, collector, WithUpdateInterval(time.Hour))

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	now := base
	store.now = func() time.Time { return now }

	first, err := store.RequestUpdate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.Taken.Equal(base) {
		t.Fatalf("expected taken %s, got %s", base, first.Taken)
	}

	// Within the interval the published timestamp must not move
	now = base.Add(10 * time.Minute)
	second, err := store.RequestUpdate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != first {
		t.Error("expected the same snapshot within the update interval")
	}
	if !store.Current().Taken.Equal(base) {
		t.Errorf("published timestamp moved: %s", store.Current().Taken)
	}

	// Past the interval a new snapshot publishes
	now = base.Add(2 * time.Hour)
	third, err := store.RequestUpdate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !third.Taken.Equal(now) {
		t.Errorf("expected fresh snapshot at %s, got %s", now, third.Taken)
	}
}

func TestStoreKeepsSnapshotOnFailure(t *testing.T) {
	collector := &stubCollector{records: triangleRecords()}
	store := newTestStore(t, collector, WithUpdateInterval(time.Nanosecond))

	good, err := store.RequestUpdate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Swap in a builder whose inventory fails outright
	store.builder = NewBuilder(failingInventory{}, collector)
	time.Sleep(time.Millisecond)

	snap, err := store.RequestUpdate(context.Background())
	if err == nil {
		t.Fatal("expected an error from the failing build")
	}
	if snap != good {
		t.Error("previous snapshot must remain published after a failed cycle")
	}
	if store.Current() != good {
		t.Error("failed cycle replaced the published snapshot")
	}
}

func TestStoreRecordsChanges(t *testing.T) {
	collector := &stubCollector{records: triangleRecords()}

	// C stays in the inventory throughout: membership follows discovery,
	// so dropping its links must still remove it
	store := newTestStore(t, collector, WithUpdateInterval(time.Nanosecond))

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	now := base
	store.now = func() time.Time { return now }

	var published int
	var changes []domain.ChangeRecord
	store.OnPublish = func(*domain.Snapshot) { published++ }
	store.OnChange = func(c domain.ChangeRecord) { changes = append(changes, c) }

	if _, err := store.RequestUpdate(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.HistoryLen() != 1 {
		t.Fatalf("expected 1 history entry after first publish, got %d", store.HistoryLen())
	}

	// Same records again: publish happens, but no-op cycles leave no history
	now = base.Add(time.Hour)
	if _, err := store.RequestUpdate(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.HistoryLen() != 1 {
		t.Errorf("no-op cycle appended history: %d entries", store.HistoryLen())
	}

	// Drop C's links: C leaves the graph along with its two edges
	collector.records = triangleRecords()[:1]
	now = base.Add(2 * time.Hour)
	if _, err := store.RequestUpdate(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.HistoryLen() != 2 {
		t.Fatalf("expected 2 history entries, got %d", store.HistoryLen())
	}
	last := store.ChangesSince(base.Add(90*time.Minute), time.Time{})
	if len(last) != 1 {
		t.Fatalf("expected 1 change in window, got %d", len(last))
	}
	change := last[0]
	if len(change.RemovedNodes) != 1 || change.RemovedNodes[0] != "C" {
		t.Errorf("expected removed_nodes=[C], got %v", change.RemovedNodes)
	}
	if len(change.RemovedLinks) != 2 {
		t.Errorf("expected 2 removed links, got %v", change.RemovedLinks)
	}
	for _, key := range change.RemovedLinks {
		if !key.Touches("C") {
			t.Errorf("removed link %s does not touch C", key)
		}
	}

	if published != 3 {
		t.Errorf("expected 3 publish callbacks, got %d", published)
	}
	if len(changes) != 2 {
		t.Errorf("expected 2 change callbacks, got %d", len(changes))
	}
}

// memArchive is an in-memory ChangeArchive
type memArchive struct {
	records []domain.ChangeRecord
}

func (a *memArchive) AppendChange(ctx context.Context, change domain.ChangeRecord) error {
	a.records = append(a.records, change)
	return nil
}

func (a *memArchive) ChangesBetween(ctx context.Context, start, end time.Time) ([]domain.ChangeRecord, error) {
	var out []domain.ChangeRecord
	for _, c := range a.records {
		if c.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && !c.Timestamp.Before(end) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func TestStoreSeedsHistoryFromArchive(t *testing.T) {
	base := time.Date(2026, 7, 31, 8, 0, 0, 0, time.UTC)
	archive := &memArchive{records: []domain.ChangeRecord{
		{Timestamp: base, AddedNodes: []string{"A", "B"}},
	}}

	collector := &stubCollector{records: triangleRecords()}
	store := newTestStore(t, collector, WithChangeArchive(archive))
	store.now = func() time.Time { return base.Add(24 * time.Hour) }

	// Archived records from earlier runs are visible before any cycle
	if store.HistoryLen() != 1 {
		t.Fatalf("expected 1 seeded history entry, got %d", store.HistoryLen())
	}
	seeded := store.ChangesSince(time.Time{}, time.Time{})
	if len(seeded) != 1 || !seeded[0].Timestamp.Equal(base) {
		t.Fatalf("expected the archived record, got %v", seeded)
	}

	// A fresh cycle appends to both the history and the archive
	if _, err := store.RequestUpdate(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.HistoryLen() != 2 {
		t.Errorf("expected 2 history entries after update, got %d", store.HistoryLen())
	}
	if len(archive.records) != 2 {
		t.Errorf("expected 2 archived records, got %d", len(archive.records))
	}
}

func TestChangesSinceWindow(t *testing.T) {
	store := newTestStore(t, &stubCollector{})
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		store.history = append(store.history, domain.ChangeRecord{
			Timestamp:  base.Add(time.Duration(i) * time.Hour),
			AddedNodes: []string{"x"},
		})
	}

	if got := store.ChangesSince(time.Time{}, time.Time{}); len(got) != 3 {
		t.Errorf("expected all 3 records, got %d", len(got))
	}
	if got := store.ChangesSince(base.Add(time.Hour), time.Time{}); len(got) != 2 {
		t.Errorf("expected 2 records from start bound, got %d", len(got))
	}
	// End bound is exclusive
	if got := store.ChangesSince(time.Time{}, base.Add(2*time.Hour)); len(got) != 2 {
		t.Errorf("expected 2 records under end bound, got %d", len(got))
	}
}
