// Package repository defines the persistence interface for topology data
// that outlives the process: the change archive and the device inventory.
package repository

import (
	"context"
	"time"

	"topomon/internal/domain"
	"topomon/internal/inventory"
)

// Repository defines durable storage for change records and devices
type Repository interface {
	// Change archive
	AppendChange(ctx context.Context, change domain.ChangeRecord) error
	ChangesBetween(ctx context.Context, start, end time.Time) ([]domain.ChangeRecord, error)

	// Device inventory
	SaveDevices(ctx context.Context, devices []inventory.Device) error
	ListDevices(ctx context.Context) ([]inventory.Device, error)

	// Close releases resources
	Close() error
}
