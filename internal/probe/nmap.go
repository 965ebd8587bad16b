package probe

import (
	"context"
	"fmt"
	"log"
	"strconv"

	nmap "github.com/Ullaakut/nmap/v3"
	"topomon/internal/domain"
	"topomon/internal/inventory"
)

// TracerouteProbe discovers layer-3 hops between the probing host and each
// inventory device with an nmap traceroute. Consecutive hops become
// layer-3 records, so intermediate routers that are not in the inventory
// still appear in the graph.
type TracerouteProbe struct {
	origin string
}

// NewTracerouteProbe creates a traceroute probe. origin names the node the
// first hop attaches to, normally the host running the engine.
func NewTracerouteProbe(origin string) *TracerouteProbe {
	return &TracerouteProbe{origin: origin}
}

// Name returns the probe identifier
func (p *TracerouteProbe) Name() string {
	return "traceroute"
}

// Neighbors runs a ping scan with traceroute against the device and
// converts the hop chain into adjacency records
func (p *TracerouteProbe) Neighbors(ctx context.Context, device inventory.Device) ([]domain.NeighborRecord, error) {
	scanner, err := nmap.NewScanner(
		ctx,
		nmap.WithTargets(device.Key),
		nmap.WithPingScan(),
		nmap.WithTraceRoute(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scanner: %w", err)
	}

	result, warnings, err := scanner.Run()
	if err != nil {
		return nil, fmt.Errorf("traceroute to %s failed: %w", device.Key, err)
	}
	if warnings != nil && len(*warnings) > 0 {
		log.Printf("Traceroute: warnings for %s: %v", device.Key, *warnings)
	}

	var records []domain.NeighborRecord
	for _, host := range result.Hosts {
		if host.Status.State != "up" {
			continue
		}
		records = append(records, p.hopRecords(device.Key, host.Trace.Hops)...)
	}
	return records, nil
}

// hopRecords chains the trace hops into records. The last hop is the
// target itself, which nmap reports by address; it is renamed to the
// inventory key so the edge lands on the known node.
func (p *TracerouteProbe) hopRecords(target string, hops []nmap.Hop) []domain.NeighborRecord {
	if len(hops) == 0 {
		return nil
	}

	names := make([]string, 0, len(hops)+1)
	rtts := make([]string, 0, len(hops)+1)
	if p.origin != "" {
		names = append(names, p.origin)
		rtts = append(rtts, "")
	}
	for i, hop := range hops {
		name := hop.IPAddr
		if hop.Host != "" {
			name = hop.Host
		}
		if i == len(hops)-1 {
			name = target
		}
		names = append(names, name)
		rtts = append(rtts, hop.RTT)
	}

	var records []domain.NeighborRecord
	for i := 0; i+1 < len(names); i++ {
		if names[i] == names[i+1] || names[i] == "" || names[i+1] == "" {
			continue
		}
		rec := domain.NeighborRecord{
			Device:   names[i],
			Neighbor: names[i+1],
			Protocol: "traceroute",
			Kind:     domain.LinkKindLogical,
			Layer:    domain.LayerL3,
		}
		// nmap reports hop RTT as text and may leave it blank for
		// unresponsive hops
		if ms, err := strconv.ParseFloat(rtts[i+1], 64); err == nil {
			rec.Metrics = map[string]any{"rtt_ms": ms}
		}
		records = append(records, rec)
	}
	return records
}
