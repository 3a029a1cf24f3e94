// Package history stores the append-only record of answered queries.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/kerala-navigator/navigator/internal/db"
	"github.com/kerala-navigator/navigator/internal/geo"
	"github.com/kerala-navigator/navigator/internal/lang"
)

const (
	// MaxReplyLength bounds the stored reply, in characters.
	MaxReplyLength = 5000
	// RecentLimit is how many entries Recent returns.
	RecentLimit = 50
)

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one answered query.
type Entry struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Message   string        `json:"message"`
	Language  lang.Language `json:"language"`
	Location  *geo.Location `json:"location"`
	Reply     string        `json:"reply"`
	Source    string        `json:"source"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Store persists entries in the chats table.
type Store struct {
	db  *db.DB
	now func() time.Time
}

// NewStore creates a Store backed by database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database, now: time.Now}
}

// Append stores e, assigning its id and timestamp and truncating the reply.
func (s *Store) Append(ctx context.Context, e Entry) error {
	e.ID = uuid.NewString()
	e.CreatedAt = s.now().UTC()
	e.Reply = truncate(e.Reply, MaxReplyLength)
	if e.Source == "" {
		e.Source = "unknown"
	}

	var lat, lng sql.NullFloat64
	if e.Location != nil {
		lat = sql.NullFloat64{Float64: e.Location.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: e.Location.Lng, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chats (id, user_id, message, language, lat, lng, reply, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Message, string(e.Language), lat, lng, e.Reply, e.Source,
		e.CreatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("inserting chat: %w", err)
	}
	return nil
}

// Recent returns up to RecentLimit entries for userID, newest first.
func (s *Store) Recent(ctx context.Context, userID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, message, language, lat, lng, reply, source, created_at
		FROM chats WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, userID, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("querying chats: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e          Entry
			language   string
			lat, lng   sql.NullFloat64
			createdStr string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Message, &language, &lat, &lng, &e.Reply, &e.Source, &createdStr); err != nil {
			return nil, err
		}
		e.Language = lang.Parse(language)
		if lat.Valid && lng.Valid {
			e.Location = &geo.Location{Lat: lat.Float64, Lng: lng.Float64}
		}
		if e.CreatedAt, err = time.Parse(timeLayout, createdStr); err != nil {
			return nil, fmt.Errorf("parsing chat timestamp %q: %w", createdStr, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
