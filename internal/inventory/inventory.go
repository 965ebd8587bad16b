// Package inventory supplies the device list the discovery cycle probes.
// The engine only consumes the Source interface; where the devices come
// from (static config, an external CMDB, auto-discovery) is a collaborator
// concern.
package inventory

import (
	"context"
	"fmt"
	"sort"

	"topomon/internal/domain"
)

// Device is one entry of the monitored device set
type Device struct {
	Key        string                    `json:"key" yaml:"key"`
	Name       string                    `json:"name,omitempty" yaml:"name,omitempty"`
	Kind       domain.DeviceKind         `json:"kind,omitempty" yaml:"kind,omitempty"`
	Location   string                    `json:"location,omitempty" yaml:"location,omitempty"`
	Interfaces map[string]map[string]any `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`
}

// Node converts the inventory entry to its graph node representation
func (d Device) Node() *domain.Node {
	node := domain.NewNode(d.Key)
	node.Name = d.Name
	if d.Kind != "" {
		node.Kind = d.Kind
	}
	node.Location = d.Location
	for name, attrs := range d.Interfaces {
		node.SetInterface(name, attrs)
	}
	return node
}

// Source provides the current device set
type Source interface {
	Devices(ctx context.Context) ([]Device, error)
}

// StaticSource serves a fixed device list, typically loaded from config
type StaticSource struct {
	devices []Device
}

// NewStaticSource validates and sorts the device list
func NewStaticSource(devices []Device) (*StaticSource, error) {
	seen := make(map[string]struct{}, len(devices))
	out := make([]Device, 0, len(devices))
	for _, d := range devices {
		if d.Key == "" {
			return nil, fmt.Errorf("inventory device missing key")
		}
		if _, dup := seen[d.Key]; dup {
			return nil, fmt.Errorf("duplicate inventory device %s", d.Key)
		}
		seen[d.Key] = struct{}{}
		if d.Kind == "" {
			d.Kind = domain.DeviceKindUnknown
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return &StaticSource{devices: out}, nil
}

// Devices returns the configured device set
func (s *StaticSource) Devices(ctx context.Context) ([]Device, error) {
	out := make([]Device, len(s.devices))
	copy(out, s.devices)
	return out, nil
}
