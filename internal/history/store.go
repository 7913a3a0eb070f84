// Package history keeps a local record of successful resume submissions.
package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	xlog "resumectl/internal/log"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

var ErrEmptyResumeID = errors.New("resume id must be set")

// Record is one successful submission.
type Record struct {
	ResumeID   string
	Timestamp  string // as reported by the endpoint
	FileName   string
	SizeBytes  int64
	SessionID  string
	RecordedAt time.Time
}

// Store persists records in SQLite.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

// Open opens (creating if needed) the database at dsn and applies pending
// migrations.
func Open(ctx context.Context, dsn string, logger zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{
		db:     db,
		logger: logger.With().Str(xlog.FieldComponent, "history").Logger(),
		now:    time.Now,
	}, nil
}

// RunMigrations applies the embedded schema migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Add stores r. Recording the same resume id twice keeps the first record.
func (s *Store) Add(ctx context.Context, r Record) error {
	if r.ResumeID == "" {
		return ErrEmptyResumeID
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = s.now()
	}

	query := `INSERT INTO submissions (resume_id, reported_at, file_name, size_bytes, session_id, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(resume_id) DO NOTHING`
	_, err := s.db.ExecContext(ctx, query,
		r.ResumeID, r.Timestamp, r.FileName, r.SizeBytes, r.SessionID, r.RecordedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}

	s.logger.Debug().Str(xlog.FieldResumeID, r.ResumeID).Msg("submission recorded")
	return nil
}

// List returns up to limit records, newest first. A limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT resume_id, reported_at, file_name, size_bytes, session_id, recorded_at
			FROM submissions ORDER BY recorded_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select submissions: %w", err)
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		var (
			r          Record
			recordedAt string
		)
		if err := rows.Scan(&r.ResumeID, &r.Timestamp, &r.FileName, &r.SizeBytes, &r.SessionID, &recordedAt); err != nil {
			return nil, err
		}
		r.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("bad recorded_at %q: %w", recordedAt, err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
