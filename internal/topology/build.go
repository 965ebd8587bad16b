package topology

import (
	"context"
	"fmt"
	"time"

	"topomon/internal/domain"
	"topomon/internal/inventory"
	"topomon/internal/probe"
)

// Collector produces the raw record set for a discovery cycle.
// *probe.Aggregator is the production implementation.
type Collector interface {
	Collect(ctx context.Context, devices []inventory.Device) ([]domain.NeighborRecord, []probe.Failure)
}

// BuildLayerGraphs partitions records by layer and merges each partition
// on write. Layer-2 records form the adjacency graph; layer-3 and
// layer-4 records both land in the routed graph, since transport-layer
// observations describe reachability, not physical adjacency.
func BuildLayerGraphs(records []domain.NeighborRecord) (l2, l3 *domain.Graph, err error) {
	l2 = domain.NewGraph()
	l3 = domain.NewGraph()
	for _, rec := range records {
		target := l3
		if rec.Layer == domain.LayerL2 {
			target = l2
		}
		if err := target.MergeRecord(rec); err != nil {
			return nil, nil, fmt.Errorf("merge record %s-%s: %w", rec.Device, rec.Neighbor, err)
		}
	}
	return l2, l3, nil
}

// Builder assembles a full candidate snapshot from inventory and probes
type Builder struct {
	inventory inventory.Source
	collector Collector
}

// NewBuilder creates a snapshot builder
func NewBuilder(inv inventory.Source, collector Collector) *Builder {
	return &Builder{inventory: inv, collector: collector}
}

// Build runs one discovery cycle and returns a fully-constructed
// snapshot. The result is built off to the side; the caller decides
// whether to publish it. Probe failures degrade the result and are
// returned for reporting, not treated as build errors.
func (b *Builder) Build(ctx context.Context, taken time.Time) (*domain.Snapshot, []probe.Failure, error) {
	devices, err := b.inventory.Devices(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load inventory: %w", err)
	}

	records, failures := b.collector.Collect(ctx, devices)

	l2, l3, err := BuildLayerGraphs(records)
	if err != nil {
		return nil, failures, err
	}

	unified := domain.NewGraph()
	unified.Union(l2)
	unified.Union(l3)

	// Inventory describes what to probe and enriches discovered nodes
	// with declared attributes. It does not pin graph membership: a
	// device whose links all disappear leaves the snapshot.
	for _, dev := range devices {
		node := dev.Node()
		if unified.HasNode(dev.Key) {
			unified.AddNode(node)
		}
		if l2.HasNode(dev.Key) {
			l2.AddNode(node)
		}
		if l3.HasNode(dev.Key) {
			l3.AddNode(node)
		}
	}

	return &domain.Snapshot{
		Unified: unified,
		Layer2:  l2,
		Layer3:  l3,
		Taken:   taken,
	}, failures, nil
}
