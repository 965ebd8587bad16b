package domain

import (
	"fmt"
	"reflect"
	"sort"
)

// LinkKind represents the nature of a network connection
type LinkKind string

const (
	LinkKindPhysical LinkKind = "physical"
	LinkKindLogical  LinkKind = "logical"
	LinkKindVLAN     LinkKind = "vlan"
	LinkKindLAG      LinkKind = "lag"
)

// Layer represents the OSI layer a link was discovered on
type Layer string

const (
	LayerL2 Layer = "layer2"
	LayerL3 Layer = "layer3"
	LayerL4 Layer = "layer4"
)

// Valid reports whether the layer is one the engine understands
func (l Layer) Valid() bool {
	return l == LayerL2 || l == LayerL3 || l == LayerL4
}

// LinkKey is the identity of a published link: the unordered node pair
// plus the layer. A and B are always stored in ascending order so the
// same pair hashes identically no matter which side observed it.
type LinkKey struct {
	A     string `json:"a"`
	B     string `json:"b"`
	Layer Layer  `json:"layer"`
}

// NewLinkKey builds a normalized link key from two node addresses
func NewLinkKey(a, b string, layer Layer) LinkKey {
	if a > b {
		a, b = b, a
	}
	return LinkKey{A: a, B: b, Layer: layer}
}

// Pair returns the key's node pair without the layer
func (k LinkKey) Pair() [2]string {
	return [2]string{k.A, k.B}
}

// Touches reports whether the key has the given node as an endpoint
func (k LinkKey) Touches(node string) bool {
	return k.A == node || k.B == node
}

// Other returns the opposite endpoint, or "" if node is not an endpoint
func (k LinkKey) Other(node string) string {
	switch node {
	case k.A:
		return k.B
	case k.B:
		return k.A
	}
	return ""
}

func (k LinkKey) String() string {
	return fmt.Sprintf("%s--%s@%s", k.A, k.B, k.Layer)
}

// InterfacePair is one observed interface binding of a link, oriented
// from the key's A endpoint to its B endpoint.
type InterfacePair struct {
	Local  string `json:"local"`
	Remote string `json:"remote"`
}

// Link is one logical edge of the topology. Multiple protocol
// observations of the same (pair, layer) are folded into a single Link;
// set-valued attributes are kept sorted so two links built from the same
// observations in any order compare equal.
type Link struct {
	Key        LinkKey         `json:"key"`
	Kinds      []LinkKind      `json:"kinds"`
	Interfaces []InterfacePair `json:"interfaces,omitempty"`
	SpeedMbps  int             `json:"speed_mbps,omitempty"`
	Status     string          `json:"status,omitempty"`
	VLANs      []int           `json:"vlans,omitempty"`
	LAGID      string          `json:"lag_id,omitempty"`
	Metrics    map[string]any  `json:"metrics,omitempty"`
}

// NewLink creates an empty link for the given key
func NewLink(key LinkKey) *Link {
	return &Link{Key: key}
}

// addKind inserts a kind keeping the set sorted and duplicate-free
func (l *Link) addKind(kind LinkKind) {
	for _, k := range l.Kinds {
		if k == kind {
			return
		}
	}
	l.Kinds = append(l.Kinds, kind)
	sort.Slice(l.Kinds, func(i, j int) bool { return l.Kinds[i] < l.Kinds[j] })
}

// addInterfacePair inserts an interface observation keeping the set
// sorted and duplicate-free
func (l *Link) addInterfacePair(pair InterfacePair) {
	if pair.Local == "" && pair.Remote == "" {
		return
	}
	for _, p := range l.Interfaces {
		if p == pair {
			return
		}
	}
	l.Interfaces = append(l.Interfaces, pair)
	sort.Slice(l.Interfaces, func(i, j int) bool {
		if l.Interfaces[i].Local != l.Interfaces[j].Local {
			return l.Interfaces[i].Local < l.Interfaces[j].Local
		}
		return l.Interfaces[i].Remote < l.Interfaces[j].Remote
	})
}

// addVLAN inserts a VLAN id keeping the set sorted and duplicate-free
func (l *Link) addVLAN(vlan int) {
	if vlan == 0 {
		return
	}
	for _, v := range l.VLANs {
		if v == vlan {
			return
		}
	}
	l.VLANs = append(l.VLANs, vlan)
	sort.Ints(l.VLANs)
}

// MergeRecord folds one raw observation into the link. Kind, interface
// pair and VLAN accumulate into sets; metric keys take the last observed
// value; speed, status and LAG id take the last non-empty observation.
func (l *Link) MergeRecord(rec NeighborRecord) {
	l.addKind(rec.Kind)
	l.addInterfacePair(rec.interfacePair(l.Key))
	l.addVLAN(rec.VLAN)

	if rec.SpeedMbps != 0 {
		l.SpeedMbps = rec.SpeedMbps
	}
	if rec.Status != "" {
		l.Status = rec.Status
	}
	if rec.LAGID != "" {
		l.LAGID = rec.LAGID
	}
	for k, v := range rec.Metrics {
		if l.Metrics == nil {
			l.Metrics = make(map[string]any)
		}
		l.Metrics[k] = v
	}
}

// MergeLink folds another link with the same key into this one,
// using the same union rules as MergeRecord.
func (l *Link) MergeLink(other *Link) {
	if other == nil || other.Key != l.Key {
		return
	}
	for _, k := range other.Kinds {
		l.addKind(k)
	}
	for _, p := range other.Interfaces {
		l.addInterfacePair(p)
	}
	for _, v := range other.VLANs {
		l.addVLAN(v)
	}
	if other.SpeedMbps != 0 {
		l.SpeedMbps = other.SpeedMbps
	}
	if other.Status != "" {
		l.Status = other.Status
	}
	if other.LAGID != "" {
		l.LAGID = other.LAGID
	}
	for k, v := range other.Metrics {
		if l.Metrics == nil {
			l.Metrics = make(map[string]any)
		}
		l.Metrics[k] = v
	}
}

// AttributesEqual reports whether two links carry identical attribute
// data. Identity (the key) is not compared; callers have already matched
// links by key when they ask this question.
func (l *Link) AttributesEqual(other *Link) bool {
	if other == nil {
		return false
	}
	if l.SpeedMbps != other.SpeedMbps || l.Status != other.Status || l.LAGID != other.LAGID {
		return false
	}
	if !reflect.DeepEqual(l.Kinds, other.Kinds) {
		return false
	}
	if !reflect.DeepEqual(l.Interfaces, other.Interfaces) {
		return false
	}
	if !reflect.DeepEqual(l.VLANs, other.VLANs) {
		return false
	}
	if len(l.Metrics) != len(other.Metrics) {
		return false
	}
	for k, v := range l.Metrics {
		ov, ok := other.Metrics[k]
		if !ok || !reflect.DeepEqual(v, ov) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the link
func (l *Link) Clone() *Link {
	c := &Link{
		Key:        l.Key,
		Kinds:      append([]LinkKind(nil), l.Kinds...),
		Interfaces: append([]InterfacePair(nil), l.Interfaces...),
		SpeedMbps:  l.SpeedMbps,
		Status:     l.Status,
		VLANs:      append([]int(nil), l.VLANs...),
		LAGID:      l.LAGID,
	}
	if l.Metrics != nil {
		c.Metrics = make(map[string]any, len(l.Metrics))
		for k, v := range l.Metrics {
			c.Metrics[k] = v
		}
	}
	return c
}

// SortLinkKeys orders keys for stable output and change records
func SortLinkKeys(keys []LinkKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].A != keys[j].A {
			return keys[i].A < keys[j].A
		}
		if keys[i].B != keys[j].B {
			return keys[i].B < keys[j].B
		}
		return keys[i].Layer < keys[j].Layer
	})
}
