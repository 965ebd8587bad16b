// Package codec serializes snapshots for external tooling.
package codec

import (
	"fmt"
	"io"

	"topomon/internal/domain"
)

// Exporter serializes a snapshot to one interchange format
type Exporter interface {
	Export(snap *domain.Snapshot, w io.Writer) error
	Format() string
}

// exporters holds the supported formats
var exporters = map[string]Exporter{
	"json":    NewJSONCodec(),
	"yaml":    NewYAMLCodec(),
	"graphml": NewGraphMLCodec(),
}

// ForFormat returns the exporter for the named format. Unknown formats
// are a reported error, not a crash.
func ForFormat(format string) (Exporter, error) {
	exp, ok := exporters[format]
	if !ok {
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
	return exp, nil
}

// Formats returns the supported format names
func Formats() []string {
	return []string{"graphml", "json", "yaml"}
}
