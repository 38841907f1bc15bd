// Package store persists counting-session snapshots in SQLite so a count
// survives restarts and can be resumed on another day.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ismailkaraca/kohasayim/internal/models"
)

// ErrSessionNotFound is returned when a snapshot id is unknown.
var ErrSessionNotFound = errors.New("session not found")

// Store manages session persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the session database and applies the
// schema.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applySchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) applySchema(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			library_code TEXT NOT NULL,
			location_code TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS scan_events (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			timestamp TEXT NOT NULL,
			raw_input TEXT NOT NULL,
			identifier TEXT NOT NULL,
			valid INTEGER NOT NULL,
			warnings_json TEXT,
			reference_json TEXT,
			PRIMARY KEY (session_id, seq)
		)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save writes a snapshot, replacing any earlier state of the same session.
func (s *Store) Save(ctx context.Context, snapshot *models.SessionSnapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, name, library_code, location_code, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			location_code = excluded.location_code,
			updated_at = excluded.updated_at`,
		snapshot.ID,
		snapshot.Name,
		snapshot.LibraryCode,
		snapshot.LocationCode,
		snapshot.CreatedAt.UTC().Format(time.RFC3339Nano),
		snapshot.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM scan_events WHERE session_id = ?`, snapshot.ID); err != nil {
		return fmt.Errorf("clear old events: %w", err)
	}

	insert, err := tx.PrepareContext(ctx,
		`INSERT INTO scan_events (session_id, seq, timestamp, raw_input, identifier, valid, warnings_json, reference_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare event insert: %w", err)
	}
	defer insert.Close()

	for i := range snapshot.Events {
		event := &snapshot.Events[i]

		warningsJSON, err := json.Marshal(event.Warnings)
		if err != nil {
			return fmt.Errorf("marshal warnings for seq %d: %w", event.Seq, err)
		}
		var referenceJSON []byte
		if event.Reference != nil {
			referenceJSON, err = json.Marshal(event.Reference)
			if err != nil {
				return fmt.Errorf("marshal reference for seq %d: %w", event.Seq, err)
			}
		}

		_, err = insert.ExecContext(ctx,
			snapshot.ID,
			event.Seq,
			event.Timestamp.UTC().Format(time.RFC3339Nano),
			event.RawInput,
			event.Identifier,
			boolToInt(event.Valid),
			string(warningsJSON),
			nullableString(string(referenceJSON)),
		)
		if err != nil {
			return fmt.Errorf("insert event seq %d: %w", event.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Load reads a full snapshot by session id.
func (s *Store) Load(ctx context.Context, id string) (*models.SessionSnapshot, error) {
	snapshot := &models.SessionSnapshot{}
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, library_code, location_code, created_at, updated_at
		 FROM sessions WHERE id = ?`, id).
		Scan(&snapshot.ID, &snapshot.Name, &snapshot.LibraryCode, &snapshot.LocationCode, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	snapshot.CreatedAt = parseTimestamp(createdAt)
	snapshot.UpdatedAt = parseTimestamp(updatedAt)

	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, timestamp, raw_input, identifier, valid, warnings_json, reference_json
		 FROM scan_events WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			event         models.ScanEvent
			timestamp     string
			valid         int
			warningsJSON  sql.NullString
			referenceJSON sql.NullString
		)
		if err := rows.Scan(&event.Seq, &timestamp, &event.RawInput, &event.Identifier, &valid, &warningsJSON, &referenceJSON); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}

		event.Timestamp = parseTimestamp(timestamp)
		event.Valid = valid != 0
		if warningsJSON.Valid && warningsJSON.String != "" {
			if err := json.Unmarshal([]byte(warningsJSON.String), &event.Warnings); err != nil {
				return nil, fmt.Errorf("unmarshal warnings for seq %d: %w", event.Seq, err)
			}
		}
		if referenceJSON.Valid && referenceJSON.String != "" {
			event.Reference = &models.ReferenceRecord{}
			if err := json.Unmarshal([]byte(referenceJSON.String), event.Reference); err != nil {
				return nil, fmt.Errorf("unmarshal reference for seq %d: %w", event.Seq, err)
			}
		}

		snapshot.Events = append(snapshot.Events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return snapshot, nil
}

// List returns snapshot metadata (no events), most recently updated first.
// SessionInfo is a listing entry: session metadata plus its event count,
// without the events themselves.
type SessionInfo struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	LibraryCode  string    `json:"library_code"`
	LocationCode string    `json:"location_code,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	EventCount   int       `json:"event_count"`
}

// List returns metadata for every stored session, most recently updated first.
func (s *Store) List(ctx context.Context) ([]SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.name, s.library_code, s.location_code, s.created_at, s.updated_at,
			(SELECT COUNT(*) FROM scan_events e WHERE e.session_id = s.id)
		 FROM sessions s ORDER BY s.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionInfo
	for rows.Next() {
		var (
			info                 SessionInfo
			createdAt, updatedAt string
		)
		if err := rows.Scan(&info.ID, &info.Name, &info.LibraryCode, &info.LocationCode,
			&createdAt, &updatedAt, &info.EventCount); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		info.CreatedAt = parseTimestamp(createdAt)
		info.UpdatedAt = parseTimestamp(updatedAt)
		sessions = append(sessions, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// Delete removes a session and its events.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimestamp(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
