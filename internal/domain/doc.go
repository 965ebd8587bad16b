// Package domain defines the core domain types for the topomon topology engine.
//
// This package contains the entities that represent network topology concepts:
// nodes, layer-tagged links, raw neighbor records, layer graphs, snapshots,
// and change records.
//
// # Core Types
//
// Node represents a monitored network device keyed by its address, with a
// display name, device kind, location, and interface set.
//
// Link represents one logical connection between two nodes on one layer.
// Its identity is the unordered node pair plus the layer; everything else
// is merged attribute data (kind set, interface-pair set, VLANs, metrics).
//
// NeighborRecord is a single raw observation produced by a discovery probe
// (one device saw one neighbor via one protocol). Records are merge inputs,
// never published edges.
//
// Graph is an explicit adjacency structure keyed by node address. Duplicate
// observations of the same (pair, layer) collapse into one Link at insertion
// time, so a fully-built graph never carries parallel edges for one key.
//
// # Versioning
//
// Snapshot is one immutable, fully-merged unified graph plus a timestamp.
// ChangeRecord captures the delta between two consecutive snapshots and is
// append-only once recorded.
package domain
