package probe

import (
	"testing"

	nmap "github.com/Ullaakut/nmap/v3"
	"topomon/internal/domain"
)

func TestTracerouteHopRecords(t *testing.T) {
	p := NewTracerouteProbe("monitor-01")

	hops := []nmap.Hop{
		{TTL: 1, IPAddr: "10.0.0.1", Host: "gw-01", RTT: "0.42"},
		{TTL: 2, IPAddr: "10.0.1.1", RTT: ""},
		{TTL: 3, IPAddr: "192.168.5.10", RTT: "3.75"},
	}

	records := p.hopRecords("rtr-05", hops)
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	t.Run("chains origin through hops to the target key", func(t *testing.T) {
		wantPairs := [][2]string{
			{"monitor-01", "gw-01"},
			{"gw-01", "10.0.1.1"},
			{"10.0.1.1", "rtr-05"},
		}
		for i, want := range wantPairs {
			if records[i].Device != want[0] || records[i].Neighbor != want[1] {
				t.Errorf("record %d: got %s->%s, want %s->%s",
					i, records[i].Device, records[i].Neighbor, want[0], want[1])
			}
			if records[i].Layer != domain.LayerL3 {
				t.Errorf("record %d: layer = %s, want %s", i, records[i].Layer, domain.LayerL3)
			}
		}
	})

	t.Run("parses textual RTT into rtt_ms", func(t *testing.T) {
		ms, ok := records[0].Metrics["rtt_ms"].(float64)
		if !ok || ms != 0.42 {
			t.Errorf("rtt_ms = %v, want 0.42", records[0].Metrics["rtt_ms"])
		}
	})

	t.Run("omits rtt_ms when the hop reports none", func(t *testing.T) {
		if _, ok := records[1].Metrics["rtt_ms"]; ok {
			t.Errorf("expected no rtt_ms for a blank RTT, got %v", records[1].Metrics["rtt_ms"])
		}
	})
}

func TestTracerouteHopRecordsEmpty(t *testing.T) {
	p := NewTracerouteProbe("monitor-01")
	if records := p.hopRecords("rtr-05", nil); records != nil {
		t.Errorf("expected no records for an empty trace, got %v", records)
	}
}
