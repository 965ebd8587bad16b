package probe

import (
	"sort"
	"strconv"
	"strings"

	"topomon/internal/domain"
)

// lldpNeighbor accumulates the keyvalue fields reported for one local port
type lldpNeighbor struct {
	chassisName string
	portName    string
	portDescr   string
	vlanID      int
}

// parseLLDPNeighbors parses `lldpcli show neighbors -f keyvalue` output.
// Lines look like:
//
//	lldp.eth0.chassis.name=sw-core-01
//	lldp.eth0.port.ifname=ge-0/0/4
//	lldp.eth0.vlan.vlan-id=12
func parseLLDPNeighbors(device, output string) []domain.NeighborRecord {
	byPort := make(map[string]*lldpNeighbor)

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "lldp.") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		parts := strings.SplitN(key, ".", 3)
		if len(parts) != 3 {
			continue
		}
		port := parts[1]
		n := byPort[port]
		if n == nil {
			n = &lldpNeighbor{}
			byPort[port] = n
		}
		switch parts[2] {
		case "chassis.name":
			n.chassisName = value
		case "port.ifname":
			n.portName = value
		case "port.descr":
			n.portDescr = value
		case "vlan.vlan-id":
			if id, err := strconv.Atoi(value); err == nil {
				n.vlanID = id
			}
		}
	}

	ports := make([]string, 0, len(byPort))
	for port := range byPort {
		ports = append(ports, port)
	}
	sort.Strings(ports)

	var records []domain.NeighborRecord
	for _, port := range ports {
		n := byPort[port]
		if n.chassisName == "" {
			continue
		}
		remote := n.portName
		if remote == "" {
			remote = n.portDescr
		}
		records = append(records, domain.NeighborRecord{
			Device:          device,
			Neighbor:        n.chassisName,
			LocalInterface:  port,
			RemoteInterface: remote,
			Protocol:        "lldp",
			Kind:            domain.LinkKindPhysical,
			Layer:           domain.LayerL2,
			VLAN:            n.vlanID,
		})
	}
	return records
}

// nudStates are the neighbor unreachability detection states printed by
// `ip neighbor show`
var nudStates = map[string]bool{
	"PERMANENT":  true,
	"NOARP":      true,
	"REACHABLE":  true,
	"STALE":      true,
	"DELAY":      true,
	"PROBE":      true,
	"FAILED":     true,
	"INCOMPLETE": true,
}

// parseIPNeighbors parses `ip neighbor show` output. Entries in FAILED or
// INCOMPLETE state are unresolved addresses, not adjacencies, and are
// skipped.
func parseIPNeighbors(device, output string) []domain.NeighborRecord {
	var records []domain.NeighborRecord

	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		addr := fields[0]
		if addr == device {
			continue
		}

		var iface, mac, state string
		for i := 1; i < len(fields); i++ {
			switch fields[i] {
			case "dev":
				if i+1 < len(fields) {
					iface = fields[i+1]
					i++
				}
			case "lladdr":
				if i+1 < len(fields) {
					mac = fields[i+1]
					i++
				}
			default:
				if nudStates[fields[i]] {
					state = fields[i]
				}
			}
		}
		if state == "FAILED" || state == "INCOMPLETE" {
			continue
		}

		rec := domain.NeighborRecord{
			Device:         device,
			Neighbor:       addr,
			LocalInterface: iface,
			Protocol:       "arp",
			Kind:           domain.LinkKindLogical,
			Layer:          domain.LayerL3,
			Status:         strings.ToLower(state),
		}
		if mac != "" {
			rec.Metrics = map[string]any{"mac": mac}
		}
		records = append(records, rec)
	}
	return records
}

// parseIPRoutes parses `ip route show` output. A via route contributes an
// adjacency to the next hop; a connected route contributes an adjacency to
// the network itself, so directly attached subnets show up in the graph.
func parseIPRoutes(device, output string) []domain.NeighborRecord {
	var records []domain.NeighborRecord

	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		dest := fields[0]

		var via, iface string
		var metric int
		for i := 1; i < len(fields); i++ {
			switch fields[i] {
			case "via":
				if i+1 < len(fields) {
					via = fields[i+1]
					i++
				}
			case "dev":
				if i+1 < len(fields) {
					iface = fields[i+1]
					i++
				}
			case "metric":
				if i+1 < len(fields) {
					metric, _ = strconv.Atoi(fields[i+1])
					i++
				}
			}
		}

		neighbor := via
		if neighbor == "" {
			// Connected route: the attached network is the peer
			if !strings.Contains(dest, "/") {
				continue
			}
			neighbor = dest
		}
		if neighbor == device {
			continue
		}

		rec := domain.NeighborRecord{
			Device:         device,
			Neighbor:       neighbor,
			LocalInterface: iface,
			Protocol:       "route",
			Kind:           domain.LinkKindLogical,
			Layer:          domain.LayerL3,
			Metrics:        map[string]any{"destination": dest},
		}
		if metric > 0 {
			rec.Metrics["metric"] = metric
		}
		records = append(records, rec)
	}
	return records
}
