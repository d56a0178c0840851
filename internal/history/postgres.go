package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

// PostgresStore implements the Store interface using PostgreSQL.
type PostgresStore struct {
	db      *sql.DB
	onClose func()
}

// NewPostgresStore creates a new PostgreSQL history store.
// It expects the schema to already exist (created via migrations).
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL creates a new PostgreSQL history store from a connection URL.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// NewPostgresStoreFromPool shares an existing pgx pool with the store.
func NewPostgresStoreFromPool(pool *pgxpool.Pool) (*PostgresStore, error) {
	return NewPostgresStore(stdlib.OpenDBFromPool(pool))
}

// Save upserts on fingerprint; the original ID and created_at survive.
func (s *PostgresStore) Save(ctx context.Context, record *Record) error {
	now := time.Now().UTC()

	body, err := encodeReport(record)
	if err != nil {
		return err
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	query := `
		INSERT INTO analysis_reports (
			id, fingerprint, presentation_type, title, slide_count,
			score, grade, issue_count, suggestion_count, report, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (fingerprint) DO UPDATE SET
			presentation_type = EXCLUDED.presentation_type,
			title = EXCLUDED.title,
			slide_count = EXCLUDED.slide_count,
			score = EXCLUDED.score,
			grade = EXCLUDED.grade,
			issue_count = EXCLUDED.issue_count,
			suggestion_count = EXCLUDED.suggestion_count,
			report = EXCLUDED.report,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	err = s.db.QueryRowContext(ctx, query,
		record.ID,
		record.Fingerprint,
		record.PresentationType,
		record.Title,
		record.SlideCount,
		record.Score,
		record.Grade,
		record.IssueCount,
		record.SuggestionCount,
		body,
		createdAt,
		now,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	record.UpdatedAt = now
	return nil
}

// Get retrieves a record by ID.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+summaryColumns+", report FROM analysis_reports WHERE id = $1", id)

	r, err := scanFull(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return r, nil
}

// GetByFingerprint retrieves a record by request fingerprint.
func (s *PostgresStore) GetByFingerprint(ctx context.Context, fingerprint string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+summaryColumns+", report FROM analysis_reports WHERE fingerprint = $1", fingerprint)

	r, err := scanFull(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return r, nil
}

// List returns records newest first.
func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]*Record, error) {
	return s.list(ctx, false, limit, offset)
}

func (s *PostgresStore) list(ctx context.Context, withReport bool, limit, offset int) ([]*Record, error) {
	cols := summaryColumns
	if withReport {
		cols += ", report"
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+cols+" FROM analysis_reports ORDER BY created_at DESC, id LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	result := []*Record{}
	for rows.Next() {
		var r *Record
		if withReport {
			r, err = scanFull(rows)
		} else {
			r, err = scanSummary(rows)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, r)
	}

	return result, rows.Err()
}

// Count returns the total number of records.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM analysis_reports").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}

// Delete removes a record by ID.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM analysis_reports WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return checkDeleted(res, id)
}

// ExportJSON exports all records to a JSON writer.
func (s *PostgresStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	all, err := s.list(ctx, true, maxExportLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}
	return writeExport(writer, all)
}

// ImportJSON imports records from a JSON reader.
func (s *PostgresStore) ImportJSON(ctx context.Context, reader io.Reader) (int, int, error) {
	return importRecords(ctx, s, reader)
}

// Close closes the store and releases resources.
func (s *PostgresStore) Close() error {
	err := s.db.Close()
	if s.onClose != nil {
		s.onClose()
	}
	return err
}
