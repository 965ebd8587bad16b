package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
	"topomon/internal/domain"
)

// YAMLCodec exports the node/edge list as YAML
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Export writes the snapshot as a YAML document
func (c *YAMLCodec) Export(snap *domain.Snapshot, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(BuildDocument(snap)); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
