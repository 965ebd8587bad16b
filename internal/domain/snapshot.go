package domain

import "time"

// Snapshot is one fully-built topology: the unified graph, the per-layer
// graphs it was merged from, and the time it was taken. Exactly one
// snapshot is published at a time; a published snapshot is immutable and
// may be read by any number of goroutines without locking.
type Snapshot struct {
	Unified *Graph
	Layer2  *Graph
	Layer3  *Graph
	Taken   time.Time
}

// EmptySnapshot returns a snapshot with empty graphs and a zero
// timestamp, used as the published state before the first update cycle
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		Unified: NewGraph(),
		Layer2:  NewGraph(),
		Layer3:  NewGraph(),
	}
}
