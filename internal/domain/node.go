package domain

// DeviceKind represents the role of a network device
type DeviceKind string

const (
	DeviceKindRouter       DeviceKind = "router"
	DeviceKindSwitch       DeviceKind = "switch"
	DeviceKindFirewall     DeviceKind = "firewall"
	DeviceKindServer       DeviceKind = "server"
	DeviceKindAccessPoint  DeviceKind = "access_point"
	DeviceKindLoadBalancer DeviceKind = "load_balancer"
	DeviceKindUnknown      DeviceKind = "unknown"
)

// Node represents a network device in the topology graph.
// Its identity is the device address (Key); everything else is
// descriptive and may be enriched from the inventory.
type Node struct {
	Key        string                    `json:"key"`
	Name       string                    `json:"name,omitempty"`
	Kind       DeviceKind                `json:"kind"`
	Location   string                    `json:"location,omitempty"`
	Interfaces map[string]map[string]any `json:"interfaces,omitempty"`
	VLANs      []int                     `json:"vlans,omitempty"`
	Routes     []RouteEntry              `json:"routes,omitempty"`
}

// RouteEntry is one routing-table entry attached to a node
type RouteEntry struct {
	Destination string `json:"destination"`
	NextHop     string `json:"next_hop,omitempty"`
	Interface   string `json:"interface,omitempty"`
}

// NewNode creates a node with the given identity and unknown kind.
// Nodes are created when first referenced by a discovered link or
// by the inventory; they are never deleted mid-cycle.
func NewNode(key string) *Node {
	return &Node{
		Key:  key,
		Kind: DeviceKindUnknown,
	}
}

// SetInterface records an interface and its attributes on the node
func (n *Node) SetInterface(name string, attrs map[string]any) {
	if n.Interfaces == nil {
		n.Interfaces = make(map[string]map[string]any)
	}
	n.Interfaces[name] = attrs
}

// Enrich fills empty descriptive fields from another node with the same key.
// Identity and already-known attributes are kept.
func (n *Node) Enrich(other *Node) {
	if other == nil || other.Key != n.Key {
		return
	}
	if n.Name == "" {
		n.Name = other.Name
	}
	if n.Kind == DeviceKindUnknown || n.Kind == "" {
		if other.Kind != "" {
			n.Kind = other.Kind
		}
	}
	if n.Location == "" {
		n.Location = other.Location
	}
	for name, attrs := range other.Interfaces {
		if _, ok := n.Interfaces[name]; !ok {
			n.SetInterface(name, attrs)
		}
	}
	if len(n.VLANs) == 0 {
		n.VLANs = append([]int(nil), other.VLANs...)
	}
	if len(n.Routes) == 0 {
		n.Routes = append([]RouteEntry(nil), other.Routes...)
	}
}

// Clone returns a deep copy of the node
func (n *Node) Clone() *Node {
	c := &Node{
		Key:      n.Key,
		Name:     n.Name,
		Kind:     n.Kind,
		Location: n.Location,
		VLANs:    append([]int(nil), n.VLANs...),
		Routes:   append([]RouteEntry(nil), n.Routes...),
	}
	if n.Interfaces != nil {
		c.Interfaces = make(map[string]map[string]any, len(n.Interfaces))
		for name, attrs := range n.Interfaces {
			copied := make(map[string]any, len(attrs))
			for k, v := range attrs {
				copied[k] = v
			}
			c.Interfaces[name] = copied
		}
	}
	return c
}
