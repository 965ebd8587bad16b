package codec

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"topomon/internal/domain"
)

// GraphMLCodec exports the unified graph as GraphML, the markup form
// graph tooling generally accepts
type GraphMLCodec struct{}

// NewGraphMLCodec creates a new GraphML codec
func NewGraphMLCodec() *GraphMLCodec {
	return &GraphMLCodec{}
}

// Format returns the codec format identifier
func (c *GraphMLCodec) Format() string {
	return "graphml"
}

// Attribute keys declared in the document header
var graphmlKeys = []graphmlKey{
	{ID: "name", For: "node", AttrName: "name", AttrType: "string"},
	{ID: "kind", For: "node", AttrName: "kind", AttrType: "string"},
	{ID: "location", For: "node", AttrName: "location", AttrType: "string"},
	{ID: "layer", For: "edge", AttrName: "layer", AttrType: "string"},
	{ID: "kinds", For: "edge", AttrName: "kinds", AttrType: "string"},
	{ID: "speed_mbps", For: "edge", AttrName: "speed_mbps", AttrType: "int"},
	{ID: "status", For: "edge", AttrName: "status", AttrType: "string"},
}

type graphmlDoc struct {
	XMLName xml.Name     `xml:"graphml"`
	XMLNS   string       `xml:"xmlns,attr"`
	Keys    []graphmlKey `xml:"key"`
	Graph   graphmlGraph `xml:"graph"`
}

type graphmlKey struct {
	ID       string `xml:"id,attr"`
	For      string `xml:"for,attr"`
	AttrName string `xml:"attr.name,attr"`
	AttrType string `xml:"attr.type,attr"`
}

type graphmlGraph struct {
	ID          string        `xml:"id,attr"`
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphmlNode `xml:"node"`
	Edges       []graphmlEdge `xml:"edge"`
}

type graphmlNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphmlData `xml:"data"`
}

type graphmlEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphmlData `xml:"data"`
}

type graphmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// Export writes the snapshot's unified graph as a GraphML document
func (c *GraphMLCodec) Export(snap *domain.Snapshot, w io.Writer) error {
	doc := graphmlDoc{
		XMLNS: "http://graphml.graphdrawing.org/xmlns",
		Keys:  graphmlKeys,
		Graph: graphmlGraph{
			ID:          "topology",
			EdgeDefault: "undirected",
		},
	}

	g := snap.Unified
	for _, key := range g.NodeKeys() {
		node := g.Nodes[key]
		entry := graphmlNode{ID: node.Key}
		if node.Name != "" {
			entry.Data = append(entry.Data, graphmlData{Key: "name", Value: node.Name})
		}
		entry.Data = append(entry.Data, graphmlData{Key: "kind", Value: string(node.Kind)})
		if node.Location != "" {
			entry.Data = append(entry.Data, graphmlData{Key: "location", Value: node.Location})
		}
		doc.Graph.Nodes = append(doc.Graph.Nodes, entry)
	}

	for _, key := range g.LinkKeys() {
		link := g.Edges[key]
		entry := graphmlEdge{
			Source: key.A,
			Target: key.B,
			Data: []graphmlData{
				{Key: "layer", Value: string(key.Layer)},
				{Key: "kinds", Value: joinKinds(link.Kinds)},
			},
		}
		if link.SpeedMbps > 0 {
			entry.Data = append(entry.Data, graphmlData{Key: "speed_mbps", Value: fmt.Sprintf("%d", link.SpeedMbps)})
		}
		if link.Status != "" {
			entry.Data = append(entry.Data, graphmlData{Key: "status", Value: link.Status})
		}
		doc.Graph.Edges = append(doc.Graph.Edges, entry)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write GraphML: %w", err)
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode GraphML: %w", err)
	}
	return encoder.Close()
}

func joinKinds(kinds []domain.LinkKind) string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return strings.Join(out, ",")
}
