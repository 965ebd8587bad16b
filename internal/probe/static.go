package probe

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"topomon/internal/domain"
	"topomon/internal/inventory"
)

// StaticProbe serves neighbor records from a YAML file. It backs lab and
// test setups where the topology is declared instead of discovered, and
// lets operators pin links that live probes cannot see.
type StaticProbe struct {
	byDevice map[string][]domain.NeighborRecord
}

// staticFile is the on-disk document shape
type staticFile struct {
	Records []domain.NeighborRecord `yaml:"records"`
}

// NewStaticProbe loads a records file and indexes it by device
func NewStaticProbe(path string) (*StaticProbe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records file: %w", err)
	}
	return NewStaticProbeFromBytes(data)
}

// NewStaticProbeFromBytes parses a records document held in memory
func NewStaticProbeFromBytes(data []byte) (*StaticProbe, error) {
	var file staticFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse records file: %w", err)
	}

	byDevice := make(map[string][]domain.NeighborRecord)
	for i, rec := range file.Records {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		byDevice[rec.Device] = append(byDevice[rec.Device], rec)
	}
	return &StaticProbe{byDevice: byDevice}, nil
}

// Name returns the probe identifier
func (p *StaticProbe) Name() string {
	return "static"
}

// Neighbors returns the declared records for the device
func (p *StaticProbe) Neighbors(ctx context.Context, device inventory.Device) ([]domain.NeighborRecord, error) {
	recs := p.byDevice[device.Key]
	out := make([]domain.NeighborRecord, len(recs))
	copy(out, recs)
	return out, nil
}
