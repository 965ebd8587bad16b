// Package service exposes the topology engine's operations to consumers:
// the HTTP surface, the monitoring loop, and any in-process caller.
package service

import (
	"context"
	"io"
	"log"
	"time"

	"topomon/internal/codec"
	"topomon/internal/domain"
	"topomon/internal/topology"
)

// TopologyService wraps the snapshot store with query operations and
// event publication
type TopologyService struct {
	store  *topology.SnapshotStore
	events *EventBus

	maxPathDepth int
	maxPaths     int
}

// NewTopologyService creates the service and wires store publications
// onto the event bus
func NewTopologyService(store *topology.SnapshotStore, events *EventBus, maxPathDepth, maxPaths int) *TopologyService {
	svc := &TopologyService{
		store:        store,
		events:       events,
		maxPathDepth: maxPathDepth,
		maxPaths:     maxPaths,
	}

	store.OnPublish = func(snap *domain.Snapshot) {
		events.Publish(Event{Type: EventTopologyUpdated, Payload: map[string]any{
			"taken": snap.Taken,
			"nodes": len(snap.Unified.Nodes),
			"links": len(snap.Unified.Edges),
		}})
	}
	store.OnChange = func(change domain.ChangeRecord) {
		events.Publish(Event{Type: EventTopologyChanged, Payload: change})
	}

	return svc
}

// CurrentTopology returns the published snapshot
func (s *TopologyService) CurrentTopology() *domain.Snapshot {
	return s.store.Current()
}

// Update requests a discovery cycle; within the update interval this is
// a no-op returning the current snapshot
func (s *TopologyService) Update(ctx context.Context) (*domain.Snapshot, error) {
	snap, err := s.store.RequestUpdate(ctx)
	if err != nil {
		s.events.Publish(Event{Type: EventCycleFailed, Payload: map[string]any{
			"error": err.Error(),
		}})
	}
	return snap, err
}

// Path returns the minimum-hop path between two devices
func (s *TopologyService) Path(source, target string) ([]string, error) {
	return topology.ShortestPath(s.store.Current().Unified, source, target)
}

// RedundantPaths returns all simple paths between two devices, bounded
// by the configured depth and count limits
func (s *TopologyService) RedundantPaths(source, target string) ([][]string, bool, error) {
	return topology.AllSimplePaths(s.store.Current().Unified, source, target, s.maxPathDepth, s.maxPaths)
}

// CriticalLinks returns the links whose loss would split the network
func (s *TopologyService) CriticalLinks() []*domain.Link {
	snap := s.store.Current()
	keys := topology.Bridges(snap.Unified)
	out := make([]*domain.Link, 0, len(keys))
	for _, key := range keys {
		out = append(out, snap.Unified.Edges[key])
	}
	return out
}

// ChangesSince returns recorded changes within [start, end)
func (s *TopologyService) ChangesSince(start, end time.Time) []domain.ChangeRecord {
	return s.store.ChangesSince(start, end)
}

// Export writes the published snapshot in the named format
func (s *TopologyService) Export(format string, w io.Writer) error {
	exp, err := codec.ForFormat(format)
	if err != nil {
		return err
	}
	return exp.Export(s.store.Current(), w)
}

// RunUpdateLoop drives periodic updates until the context ends. The
// store's own interval gate decides whether a tick publishes; ticking
// faster than the interval just means a due update is picked up sooner.
func (s *TopologyService) RunUpdateLoop(ctx context.Context, tick time.Duration) {
	if _, err := s.Update(ctx); err != nil {
		log.Printf("Initial topology update failed: %v", err)
	}

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Update(ctx); err != nil {
				log.Printf("Topology update failed: %v", err)
			}
		}
	}
}
