package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"topomon/internal/domain"
)

// Document is the canonical node/edge-list interchange form of a
// snapshot. Nodes and links come out in canonical order so two exports
// of the same snapshot are byte-identical.
type Document struct {
	Taken time.Time      `json:"taken" yaml:"taken"`
	Nodes []*domain.Node `json:"nodes" yaml:"nodes"`
	Links []LinkEntry    `json:"links" yaml:"links"`
}

// LinkEntry flattens a link's identity next to its attributes
type LinkEntry struct {
	Source     string                 `json:"source" yaml:"source"`
	Target     string                 `json:"target" yaml:"target"`
	Layer      domain.Layer           `json:"layer" yaml:"layer"`
	Kinds      []domain.LinkKind      `json:"kinds" yaml:"kinds"`
	Interfaces []domain.InterfacePair `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`
	SpeedMbps  int                    `json:"speed_mbps,omitempty" yaml:"speed_mbps,omitempty"`
	Status     string                 `json:"status,omitempty" yaml:"status,omitempty"`
	VLANs      []int                  `json:"vlans,omitempty" yaml:"vlans,omitempty"`
	LAGID      string                 `json:"lag_id,omitempty" yaml:"lag_id,omitempty"`
	Metrics    map[string]any         `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// BuildDocument converts a snapshot's unified graph to the interchange form
func BuildDocument(snap *domain.Snapshot) Document {
	doc := Document{
		Taken: snap.Taken,
		Nodes: make([]*domain.Node, 0, len(snap.Unified.Nodes)),
		Links: make([]LinkEntry, 0, len(snap.Unified.Edges)),
	}
	for _, key := range snap.Unified.NodeKeys() {
		doc.Nodes = append(doc.Nodes, snap.Unified.Nodes[key])
	}
	for _, key := range snap.Unified.LinkKeys() {
		link := snap.Unified.Edges[key]
		doc.Links = append(doc.Links, LinkEntry{
			Source:     key.A,
			Target:     key.B,
			Layer:      key.Layer,
			Kinds:      link.Kinds,
			Interfaces: link.Interfaces,
			SpeedMbps:  link.SpeedMbps,
			Status:     link.Status,
			VLANs:      link.VLANs,
			LAGID:      link.LAGID,
			Metrics:    link.Metrics,
		})
	}
	return doc
}

// JSONCodec exports the node/edge list as JSON
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Export writes the snapshot as an indented JSON document
func (c *JSONCodec) Export(snap *domain.Snapshot, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(BuildDocument(snap)); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
