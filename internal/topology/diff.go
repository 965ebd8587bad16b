package topology

import (
	"time"

	"topomon/internal/domain"
)

// Diff compares two unified graphs and reports the structural delta.
// Nodes compare by key, edges by (pair, layer) identity; edges present on
// both sides compare attributes and surface as modified when unequal.
// All categories come out in canonical order.
func Diff(prev, next *domain.Graph, at time.Time) domain.ChangeRecord {
	change := domain.ChangeRecord{Timestamp: at}

	for _, key := range next.NodeKeys() {
		if !prev.HasNode(key) {
			change.AddedNodes = append(change.AddedNodes, key)
		}
	}
	for _, key := range prev.NodeKeys() {
		if !next.HasNode(key) {
			change.RemovedNodes = append(change.RemovedNodes, key)
		}
	}

	for _, key := range next.LinkKeys() {
		before, existed := prev.Edges[key]
		if !existed {
			change.AddedLinks = append(change.AddedLinks, key)
			continue
		}
		after := next.Edges[key]
		if !before.AttributesEqual(after) {
			change.ModifiedLinks = append(change.ModifiedLinks, domain.ModifiedLink{
				Key:    key,
				Before: before.Clone(),
				After:  after.Clone(),
			})
		}
	}
	for _, key := range prev.LinkKeys() {
		if _, ok := next.Edges[key]; !ok {
			change.RemovedLinks = append(change.RemovedLinks, key)
		}
	}

	return change
}
