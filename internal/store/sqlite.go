package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mwhelan/daybreak/internal/record"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at dbPath and prepares the
// schema.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL keeps the ingest watcher and the bridge from tripping over each
	// other on concurrent writes.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS check_ins (
		id TEXT PRIMARY KEY,
		ts INTEGER NOT NULL,
		craving INTEGER NOT NULL,
		mood INTEGER NOT NULL,
		triggers_json TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_check_ins_ts ON check_ins(ts);

	CREATE TABLE IF NOT EXISTS meetings (
		id TEXT PRIMARY KEY,
		ts INTEGER NOT NULL,
		duration_seconds INTEGER NOT NULL,
		category TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_meetings_ts ON meetings(ts);

	CREATE TABLE IF NOT EXISTS meditations (
		id TEXT PRIMARY KEY,
		ts INTEGER NOT NULL,
		duration_seconds INTEGER NOT NULL,
		technique TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_meditations_ts ON meditations(ts);

	CREATE TABLE IF NOT EXISTS quote_favorites (
		quote_id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// AddCheckIn stores one check-in entry.
func (s *SQLiteStore) AddCheckIn(ctx context.Context, c record.CheckIn) error {
	if err := c.Validate(); err != nil {
		return err
	}
	var triggers []byte
	if len(c.Triggers) > 0 {
		var err error
		triggers, err = json.Marshal(c.Triggers)
		if err != nil {
			return fmt.Errorf("marshal triggers: %w", err)
		}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO check_ins (id, ts, craving, mood, triggers_json) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Timestamp.Unix(), c.Craving, c.Mood, nullableString(triggers))
	if err != nil {
		return fmt.Errorf("insert check-in: %w", err)
	}
	return nil
}

// AddMeeting stores one meeting attendance.
func (s *SQLiteStore) AddMeeting(ctx context.Context, m record.MeetingAttendance) error {
	if err := m.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO meetings (id, ts, duration_seconds, category) VALUES (?, ?, ?, ?)`,
		m.ID, m.Timestamp.Unix(), int64(m.Duration.Seconds()), m.Category)
	if err != nil {
		return fmt.Errorf("insert meeting: %w", err)
	}
	return nil
}

// AddMeditation stores one meditation session.
func (s *SQLiteStore) AddMeditation(ctx context.Context, m record.MeditationSession) error {
	if err := m.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO meditations (id, ts, duration_seconds, technique) VALUES (?, ?, ?, ?)`,
		m.ID, m.Timestamp.Unix(), int64(m.Duration.Seconds()), m.Technique)
	if err != nil {
		return fmt.Errorf("insert meditation: %w", err)
	}
	return nil
}

// CheckIns returns all check-ins, oldest first.
func (s *SQLiteStore) CheckIns(ctx context.Context) ([]record.CheckIn, error) {
	return s.checkInsWhere(ctx, `SELECT id, ts, craving, mood, triggers_json FROM check_ins ORDER BY ts, id`)
}

// CheckInsSince returns check-ins at or after t, oldest first.
func (s *SQLiteStore) CheckInsSince(ctx context.Context, t time.Time) ([]record.CheckIn, error) {
	return s.checkInsWhere(ctx,
		`SELECT id, ts, craving, mood, triggers_json FROM check_ins WHERE ts >= ? ORDER BY ts, id`,
		t.Unix())
}

func (s *SQLiteStore) checkInsWhere(ctx context.Context, query string, args ...any) ([]record.CheckIn, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query check-ins: %w", err)
	}
	defer rows.Close()

	var out []record.CheckIn
	for rows.Next() {
		var c record.CheckIn
		var ts int64
		var triggers sql.NullString
		if err := rows.Scan(&c.ID, &ts, &c.Craving, &c.Mood, &triggers); err != nil {
			return nil, fmt.Errorf("scan check-in row: %w", err)
		}
		c.Timestamp = time.Unix(ts, 0).UTC()
		if triggers.Valid && triggers.String != "" {
			if err := json.Unmarshal([]byte(triggers.String), &c.Triggers); err != nil {
				return nil, fmt.Errorf("parse triggers for %s: %w", c.ID, err)
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Meetings returns all meeting attendances, oldest first.
func (s *SQLiteStore) Meetings(ctx context.Context) ([]record.MeetingAttendance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ts, duration_seconds, category FROM meetings ORDER BY ts, id`)
	if err != nil {
		return nil, fmt.Errorf("query meetings: %w", err)
	}
	defer rows.Close()

	var out []record.MeetingAttendance
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Meditations returns all meditation sessions, oldest first.
func (s *SQLiteStore) Meditations(ctx context.Context) ([]record.MeditationSession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ts, duration_seconds, technique FROM meditations ORDER BY ts, id`)
	if err != nil {
		return nil, fmt.Errorf("query meditations: %w", err)
	}
	defer rows.Close()

	var out []record.MeditationSession
	for rows.Next() {
		m, err := scanMeditation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// LastMeeting returns the most recent meeting, or nil if none exists.
func (s *SQLiteStore) LastMeeting(ctx context.Context) (*record.MeetingAttendance, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, ts, duration_seconds, category FROM meetings ORDER BY ts DESC, id DESC LIMIT 1`)
	m, err := scanMeeting(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// LastMeditation returns the most recent meditation, or nil if none exists.
func (s *SQLiteStore) LastMeditation(ctx context.Context) (*record.MeditationSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, ts, duration_seconds, technique FROM meditations ORDER BY ts DESC, id DESC LIMIT 1`)
	m, err := scanMeditation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FavoriteQuote marks a quote as a favorite. Idempotent.
func (s *SQLiteStore) FavoriteQuote(ctx context.Context, quoteID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO quote_favorites (quote_id, created_at) VALUES (?, ?)`,
		quoteID, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert favorite: %w", err)
	}
	return nil
}

// FavoriteQuotes returns favorited quote IDs, oldest favorite first.
func (s *SQLiteStore) FavoriteQuotes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT quote_id FROM quote_favorites ORDER BY created_at, quote_id`)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favorite row: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row rowScanner) (record.MeetingAttendance, error) {
	var m record.MeetingAttendance
	var ts, seconds int64
	if err := row.Scan(&m.ID, &ts, &seconds, &m.Category); err != nil {
		if err == sql.ErrNoRows {
			return m, err
		}
		return m, fmt.Errorf("scan meeting row: %w", err)
	}
	m.Timestamp = time.Unix(ts, 0).UTC()
	m.Duration = time.Duration(seconds) * time.Second
	return m, nil
}

func scanMeditation(row rowScanner) (record.MeditationSession, error) {
	var m record.MeditationSession
	var ts, seconds int64
	if err := row.Scan(&m.ID, &ts, &seconds, &m.Technique); err != nil {
		if err == sql.ErrNoRows {
			return m, err
		}
		return m, fmt.Errorf("scan meditation row: %w", err)
	}
	m.Timestamp = time.Unix(ts, 0).UTC()
	m.Duration = time.Duration(seconds) * time.Second
	return m, nil
}

func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
