package domain

import (
	"fmt"
	"sort"
)

// NeighborRecord is one raw observation from a discovery probe: a device
// saw a neighbor via some protocol. Records are candidate merge inputs,
// not published edges; many records may collapse into one Link.
type NeighborRecord struct {
	Device          string         `json:"device" yaml:"device"`
	Neighbor        string         `json:"neighbor" yaml:"neighbor"`
	LocalInterface  string         `json:"local_interface,omitempty" yaml:"local_interface,omitempty"`
	RemoteInterface string         `json:"remote_interface,omitempty" yaml:"remote_interface,omitempty"`
	Protocol        string         `json:"protocol" yaml:"protocol"`
	Kind            LinkKind       `json:"kind" yaml:"kind"`
	Layer           Layer          `json:"layer" yaml:"layer"`
	SpeedMbps       int            `json:"speed_mbps,omitempty" yaml:"speed_mbps,omitempty"`
	Status          string         `json:"status,omitempty" yaml:"status,omitempty"`
	VLAN            int            `json:"vlan,omitempty" yaml:"vlan,omitempty"`
	LAGID           string         `json:"lag_id,omitempty" yaml:"lag_id,omitempty"`
	Metrics         map[string]any `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// Validate reports whether the record can be merged into a graph
func (r NeighborRecord) Validate() error {
	if r.Device == "" {
		return fmt.Errorf("neighbor record missing device")
	}
	if r.Neighbor == "" {
		return fmt.Errorf("neighbor record for %s missing neighbor", r.Device)
	}
	if r.Device == r.Neighbor {
		return fmt.Errorf("neighbor record for %s is a self-loop", r.Device)
	}
	if !r.Layer.Valid() {
		return fmt.Errorf("neighbor record %s-%s has unknown layer %q", r.Device, r.Neighbor, r.Layer)
	}
	return nil
}

// LinkKey returns the identity of the link this record contributes to
func (r NeighborRecord) LinkKey() LinkKey {
	return NewLinkKey(r.Device, r.Neighbor, r.Layer)
}

// interfacePair orients the record's interfaces relative to the sorted
// key so observations from either side of the link land in one set.
func (r NeighborRecord) interfacePair(key LinkKey) InterfacePair {
	if r.Device == key.A {
		return InterfacePair{Local: r.LocalInterface, Remote: r.RemoteInterface}
	}
	return InterfacePair{Local: r.RemoteInterface, Remote: r.LocalInterface}
}

// SortRecords puts records into canonical order. Probes run concurrently
// and return in arbitrary order; sorting before merge makes the
// "last observed wins" metric rule deterministic, which in turn makes
// the whole merge order-independent.
func SortRecords(records []NeighborRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Device != b.Device {
			return a.Device < b.Device
		}
		if a.Neighbor != b.Neighbor {
			return a.Neighbor < b.Neighbor
		}
		if a.Layer != b.Layer {
			return a.Layer < b.Layer
		}
		if a.Protocol != b.Protocol {
			return a.Protocol < b.Protocol
		}
		if a.LocalInterface != b.LocalInterface {
			return a.LocalInterface < b.LocalInterface
		}
		return a.RemoteInterface < b.RemoteInterface
	})
}
