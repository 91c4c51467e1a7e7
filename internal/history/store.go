package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"sonforge/internal/config"
)

// Store manages conversion-attempt persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.Paths.HistoryDB
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
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) applyMigrations(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS conversion_attempts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    uuid TEXT NOT NULL UNIQUE,
    input_path TEXT NOT NULL,
    output_path TEXT NOT NULL,
    codec TEXT NOT NULL,
    format TEXT NOT NULL,
    sample_rate INTEGER NOT NULL,
    force_mono INTEGER NOT NULL DEFAULT 0,
    normalize INTEGER NOT NULL DEFAULT 0,
    four_channel INTEGER NOT NULL DEFAULT 0,
    extras TEXT NOT NULL DEFAULT 'none',
    beats_source TEXT,
    outcome TEXT NOT NULL DEFAULT 'running',
    reason TEXT,
    started_at TEXT NOT NULL,
    finished_at TEXT,
    duration_ms INTEGER
);
CREATE INDEX IF NOT EXISTS idx_conversion_attempts_started
    ON conversion_attempts (started_at DESC);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Begin inserts a new attempt in the running state and returns it with its
// identifiers populated.
func (s *Store) Begin(ctx context.Context, attempt Attempt) (*Attempt, error) {
	now := time.Now().UTC()
	attempt.UUID = uuid.NewString()
	attempt.Outcome = OutcomeRunning
	attempt.StartedAt = now

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO conversion_attempts (
            uuid, input_path, output_path, codec, format, sample_rate,
            force_mono, normalize, four_channel, extras, beats_source,
            outcome, started_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.UUID,
		attempt.InputPath,
		attempt.OutputPath,
		attempt.Codec,
		attempt.Format,
		attempt.SampleRate,
		boolToInt(attempt.ForceMono),
		boolToInt(attempt.Normalize),
		boolToInt(attempt.FourChannel),
		attempt.Extras,
		nullableString(attempt.BeatsSource),
		attempt.Outcome,
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert attempt: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	attempt.ID = id
	return &attempt, nil
}

// Finish records the terminal outcome of an attempt.
func (s *Store) Finish(ctx context.Context, id int64, outcome Outcome, reason string) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE conversion_attempts
            SET outcome = ?, reason = ?, finished_at = ?,
                duration_ms = CAST((julianday(?) - julianday(started_at)) * 86400000 AS INTEGER)
          WHERE id = ?`,
		outcome,
		nullableString(reason),
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("finish attempt: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("attempt %d not found", id)
	}
	return nil
}

// Recent returns up to limit attempts, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		selectColumns+` ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

// GetByUUID fetches a single attempt.
func (s *Store) GetByUUID(ctx context.Context, id string) (*Attempt, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE uuid = ?`, id)
	attempt, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

const selectColumns = `
SELECT id, uuid, input_path, output_path, codec, format, sample_rate,
       force_mono, normalize, four_channel, extras, beats_source,
       outcome, reason, started_at, finished_at, duration_ms
  FROM conversion_attempts`

type scannable interface {
	Scan(dest ...any) error
}

func scanAttempt(row scannable) (Attempt, error) {
	var (
		attempt     Attempt
		forceMono   int
		normalize   int
		fourChannel int
		beatsSource sql.NullString
		reason      sql.NullString
		startedAt   string
		finishedAt  sql.NullString
		durationMS  sql.NullInt64
	)
	err := row.Scan(
		&attempt.ID,
		&attempt.UUID,
		&attempt.InputPath,
		&attempt.OutputPath,
		&attempt.Codec,
		&attempt.Format,
		&attempt.SampleRate,
		&forceMono,
		&normalize,
		&fourChannel,
		&attempt.Extras,
		&beatsSource,
		&attempt.Outcome,
		&reason,
		&startedAt,
		&finishedAt,
		&durationMS,
	)
	if err != nil {
		return Attempt{}, err
	}
	attempt.ForceMono = forceMono != 0
	attempt.Normalize = normalize != 0
	attempt.FourChannel = fourChannel != 0
	attempt.BeatsSource = beatsSource.String
	attempt.Reason = reason.String
	if ts, parseErr := time.Parse(time.RFC3339Nano, startedAt); parseErr == nil {
		attempt.StartedAt = ts
	}
	if finishedAt.Valid {
		if ts, parseErr := time.Parse(time.RFC3339Nano, finishedAt.String); parseErr == nil {
			attempt.FinishedAt = &ts
		}
	}
	if durationMS.Valid {
		attempt.Duration = time.Duration(durationMS.Int64) * time.Millisecond
	}
	return attempt, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
