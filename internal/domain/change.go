package domain

import "time"

// ModifiedLink records an edge whose identity survived a cycle but
// whose attributes changed, carrying both attribute sets
type ModifiedLink struct {
	Key    LinkKey `json:"key"`
	Before *Link   `json:"before"`
	After  *Link   `json:"after"`
}

// ChangeRecord is the delta between two consecutive snapshots.
// Records are ordered by timestamp and never mutated after creation.
type ChangeRecord struct {
	Timestamp     time.Time      `json:"timestamp"`
	AddedNodes    []string       `json:"added_nodes,omitempty"`
	RemovedNodes  []string       `json:"removed_nodes,omitempty"`
	AddedLinks    []LinkKey      `json:"added_links,omitempty"`
	RemovedLinks  []LinkKey      `json:"removed_links,omitempty"`
	ModifiedLinks []ModifiedLink `json:"modified_links,omitempty"`
}

// Empty reports whether the record carries no changes in any category.
// Empty records are never appended to history.
func (c *ChangeRecord) Empty() bool {
	return len(c.AddedNodes) == 0 &&
		len(c.RemovedNodes) == 0 &&
		len(c.AddedLinks) == 0 &&
		len(c.RemovedLinks) == 0 &&
		len(c.ModifiedLinks) == 0
}
