// Package topology turns raw neighbor records into published snapshots.
//
// A discovery cycle runs Collect -> Build -> Diff -> Publish. The build
// partitions records into per-layer graphs, merges duplicates on write,
// and unions the layers into one candidate unified graph constructed off
// to the side. Only a fully-built candidate is swapped in, as a single
// atomic pointer update, so readers never see a half-built graph.
//
// # Queries
//
// The query functions in this package are pure reads over a graph value.
// They are safe to run against the published snapshot without locking
// because snapshots are never mutated after publication.
package topology
