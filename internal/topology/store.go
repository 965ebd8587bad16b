package topology

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"topomon/internal/domain"
)

// DefaultUpdateInterval gates how often a discovery cycle may publish
const DefaultUpdateInterval = time.Hour

// ChangeArchive persists change records beyond the in-memory history.
// The store treats archiving as best effort; an archive failure is
// logged and does not fail the cycle. At construction the archive seeds
// the history, so ChangesSince covers records from earlier runs.
type ChangeArchive interface {
	AppendChange(ctx context.Context, change domain.ChangeRecord) error
	ChangesBetween(ctx context.Context, start, end time.Time) ([]domain.ChangeRecord, error)
}

// SnapshotStore owns the published snapshot and the change history.
//
// Exactly one update cycle runs at a time; a RequestUpdate arriving
// while a cycle is in flight, or before the update interval has elapsed,
// returns the current snapshot unchanged. Publication is a single atomic
// pointer swap, so readers never block and never see a partial graph.
type SnapshotStore struct {
	builder  *Builder
	interval time.Duration
	archive  ChangeArchive

	// OnPublish, when set, is called after each successful publish with
	// the new snapshot. OnChange is called only when the cycle produced
	// a non-empty change record. Both run on the updating goroutine.
	OnPublish func(*domain.Snapshot)
	OnChange  func(domain.ChangeRecord)

	current atomic.Pointer[domain.Snapshot]

	cycleMu sync.Mutex

	histMu  sync.RWMutex
	history []domain.ChangeRecord

	now func() time.Time
}

// StoreOption configures a SnapshotStore
type StoreOption func(*SnapshotStore)

// WithUpdateInterval sets the minimum time between published updates
func WithUpdateInterval(d time.Duration) StoreOption {
	return func(s *SnapshotStore) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithChangeArchive attaches a durable sink for change records
func WithChangeArchive(archive ChangeArchive) StoreOption {
	return func(s *SnapshotStore) {
		s.archive = archive
	}
}

// NewSnapshotStore creates a store publishing an empty snapshot until
// the first update cycle runs
func NewSnapshotStore(builder *Builder, opts ...StoreOption) *SnapshotStore {
	s := &SnapshotStore{
		builder:  builder,
		interval: DefaultUpdateInterval,
		now:      time.Now,
	}
	s.current.Store(domain.EmptySnapshot())
	for _, opt := range opts {
		opt(s)
	}
	if s.archive != nil {
		hist, err := s.archive.ChangesBetween(context.Background(), time.Time{}, time.Time{})
		if err != nil {
			log.Printf("Failed to load archived change history: %v", err)
		} else {
			s.history = hist
		}
	}
	return s
}

// Current returns the published snapshot. The result is immutable and
// safe to read from any goroutine.
func (s *SnapshotStore) Current() *domain.Snapshot {
	return s.current.Load()
}

// RequestUpdate runs a discovery cycle if one is due. Within the update
// interval, or while another cycle is in flight, it returns the current
// snapshot unchanged. On a build failure the previous snapshot stays
// published and the error is returned alongside it.
func (s *SnapshotStore) RequestUpdate(ctx context.Context) (*domain.Snapshot, error) {
	if !s.cycleMu.TryLock() {
		return s.Current(), nil
	}
	defer s.cycleMu.Unlock()

	prev := s.Current()
	start := s.now()
	if !prev.Taken.IsZero() && start.Sub(prev.Taken) < s.interval {
		return prev, nil
	}

	next, failures, err := s.builder.Build(ctx, start)
	if err != nil {
		log.Printf("Topology update failed, keeping snapshot from %s: %v", prev.Taken.Format(time.RFC3339), err)
		return prev, err
	}
	if len(failures) > 0 {
		log.Printf("Topology update degraded: %d probe failures", len(failures))
	}

	change := Diff(prev.Unified, next.Unified, start)
	if !change.Empty() {
		s.appendChange(ctx, change)
	}

	s.current.Store(next)
	log.Printf("Topology published: %d nodes, %d links, %d changes",
		len(next.Unified.Nodes), len(next.Unified.Edges), changeSize(change))

	if s.OnPublish != nil {
		s.OnPublish(next)
	}
	if s.OnChange != nil && !change.Empty() {
		s.OnChange(change)
	}
	return next, nil
}

// appendChange records a non-empty change in history and the archive
func (s *SnapshotStore) appendChange(ctx context.Context, change domain.ChangeRecord) {
	s.histMu.Lock()
	s.history = append(s.history, change)
	s.histMu.Unlock()

	if s.archive != nil {
		if err := s.archive.AppendChange(ctx, change); err != nil {
			log.Printf("Failed to archive change record: %v", err)
		}
	}
}

// ChangesSince returns the change records with start <= timestamp < end,
// oldest first. A zero end means no upper bound.
func (s *SnapshotStore) ChangesSince(start, end time.Time) []domain.ChangeRecord {
	s.histMu.RLock()
	defer s.histMu.RUnlock()

	var out []domain.ChangeRecord
	for _, c := range s.history {
		if c.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && !c.Timestamp.Before(end) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// HistoryLen returns the number of recorded changes
func (s *SnapshotStore) HistoryLen() int {
	s.histMu.RLock()
	defer s.histMu.RUnlock()
	return len(s.history)
}

func changeSize(c domain.ChangeRecord) int {
	return len(c.AddedNodes) + len(c.RemovedNodes) +
		len(c.AddedLinks) + len(c.RemovedLinks) + len(c.ModifiedLinks)
}
