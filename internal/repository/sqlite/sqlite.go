// Package sqlite implements repository.Repository on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"topomon/internal/domain"
	"topomon/internal/inventory"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Serialized access keeps the single-file database happy under the
	// store's updater plus HTTP readers
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS changes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		data JSON NOT NULL
	);

	CREATE TABLE IF NOT EXISTS devices (
		key TEXT PRIMARY KEY,
		kind TEXT NOT NULL DEFAULT 'unknown',
		data JSON NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_changes_timestamp ON changes(timestamp);
	`

	_, err := r.db.Exec(schema)
	return err
}

// AppendChange stores a change record. Records are append-only; nothing
// ever updates or deletes a stored change.
func (r *Repository) AppendChange(ctx context.Context, change domain.ChangeRecord) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal change record: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO changes (timestamp, data) VALUES (?, ?)
	`, change.Timestamp.UTC(), data)
	if err != nil {
		return fmt.Errorf("failed to insert change record: %w", err)
	}
	return nil
}

// ChangesBetween returns archived changes with start <= timestamp < end,
// oldest first. A zero end means no upper bound.
func (r *Repository) ChangesBetween(ctx context.Context, start, end time.Time) ([]domain.ChangeRecord, error) {
	query := `SELECT data FROM changes WHERE timestamp >= ?`
	args := []any{start.UTC()}
	if !end.IsZero() {
		query += ` AND timestamp < ?`
		args = append(args, end.UTC())
	}
	query += ` ORDER BY timestamp ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query changes: %w", err)
	}
	defer rows.Close()

	var out []domain.ChangeRecord
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan change record: %w", err)
		}
		var change domain.ChangeRecord
		if err := json.Unmarshal(data, &change); err != nil {
			return nil, fmt.Errorf("failed to unmarshal change record: %w", err)
		}
		out = append(out, change)
	}
	return out, rows.Err()
}

// SaveDevices upserts the device set
func (r *Repository) SaveDevices(ctx context.Context, devices []inventory.Device) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, dev := range devices {
		data, err := json.Marshal(dev)
		if err != nil {
			return fmt.Errorf("failed to marshal device %s: %w", dev.Key, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO devices (key, kind, data, updated_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET
				kind = excluded.kind,
				data = excluded.data,
				updated_at = CURRENT_TIMESTAMP
		`, dev.Key, string(dev.Kind), data)
		if err != nil {
			return fmt.Errorf("failed to upsert device %s: %w", dev.Key, err)
		}
	}

	return tx.Commit()
}

// ListDevices returns all stored devices in key order
func (r *Repository) ListDevices(ctx context.Context) ([]inventory.Device, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT data FROM devices`)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	var out []inventory.Device
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		var dev inventory.Device
		if err := json.Unmarshal(data, &dev); err != nil {
			return nil, fmt.Errorf("failed to unmarshal device: %w", err)
		}
		out = append(out, dev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Close releases the database handle
func (r *Repository) Close() error {
	return r.db.Close()
}
