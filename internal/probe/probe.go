// Package probe implements discovery probes and the aggregator that fans
// a discovery cycle out across the device inventory.
//
// A probe interrogates one device through one mechanism (SSH neighbor
// tables, traceroute, a static records file) and reports what it saw as
// neighbor records. Probes never touch the graph; the topology builder
// merges their records after the cycle completes.
package probe

import (
	"context"

	"topomon/internal/domain"
	"topomon/internal/inventory"
)

// Probe interrogates a single device and reports observed adjacencies.
// Implementations must be safe for concurrent use; the aggregator calls
// Neighbors from multiple workers at once.
type Probe interface {
	// Name returns the probe identifier, used as the record protocol tag
	// fallback and in failure reports
	Name() string

	// Neighbors returns the adjacencies observed from the given device.
	// A probe that cannot reach the device returns an error; a reachable
	// device with nothing to report returns an empty slice.
	Neighbors(ctx context.Context, device inventory.Device) ([]domain.NeighborRecord, error)
}

// Failure describes one probe invocation that returned an error.
// Failures are reported alongside the surviving records so a cycle
// degrades instead of aborting.
type Failure struct {
	Device string `json:"device"`
	Probe  string `json:"probe"`
	Err    string `json:"error"`
}
