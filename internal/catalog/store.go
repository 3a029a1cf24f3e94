package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kerala-navigator/navigator/internal/db"
)

// Store is the remote structured store for service records, backed by the
// services table. Records keep the order in which they were seeded.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Upsert inserts or replaces the records, preserving their relative order
// after any records already present.
func (s *Store) Upsert(ctx context.Context, records ...ServiceRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning upsert: %w", err)
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) + 1 FROM services`).Scan(&next); err != nil {
		return fmt.Errorf("reading service position: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, r := range records {
		doc, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshalling service %q: %w", r.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO services (id, document, position, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
			r.ID, string(doc), next, now)
		if err != nil {
			return fmt.Errorf("upserting service %q: %w", r.ID, err)
		}
		next++
	}
	return tx.Commit()
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM services`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting services: %w", err)
	}
	return n, nil
}

func (s *Store) Services(ctx context.Context) ([]ServiceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, document FROM services ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("querying services: %w", err)
	}
	defer rows.Close()

	var records []ServiceRecord
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, err
		}
		rec, err := decode(id, doc)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func (s *Store) Service(ctx context.Context, id string) (*ServiceRecord, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM services WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading service %q: %w", id, err)
	}
	return decode(id, doc)
}

func decode(id, doc string) (*ServiceRecord, error) {
	var rec ServiceRecord
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("decoding service %q: %w", id, err)
	}
	// The row key is authoritative.
	rec.ID = id
	return &rec, nil
}
