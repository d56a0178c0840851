package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/presentation-quality-server/internal/domain"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite history store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL lets readers proceed while an analysis is being written
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

const summaryColumns = `id, fingerprint, presentation_type, title, slide_count,
	score, grade, issue_count, suggestion_count, created_at, updated_at`

func scanSummary(s scanner, extra ...interface{}) (*Record, error) {
	r := &Record{}
	dest := []interface{}{
		&r.ID, &r.Fingerprint, &r.PresentationType, &r.Title, &r.SlideCount,
		&r.Score, &r.Grade, &r.IssueCount, &r.SuggestionCount, &r.CreatedAt, &r.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return r, nil
}

// scanFull scans summary columns followed by the report body.
func scanFull(s scanner) (*Record, error) {
	var body []byte
	r, err := scanSummary(s, &body)
	if err != nil {
		return nil, err
	}
	if len(body) > 0 {
		r.Report = &domain.Report{}
		if err := json.Unmarshal(body, r.Report); err != nil {
			return nil, fmt.Errorf("failed to decode stored report %s: %w", r.ID, err)
		}
	}
	return r, nil
}

func encodeReport(r *Record) (string, error) {
	if r.Report == nil {
		return "", fmt.Errorf("record %s has no report", r.ID)
	}
	data, err := json.Marshal(r.Report)
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	return string(data), nil
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS analysis_reports (
		id TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL UNIQUE,
		presentation_type TEXT DEFAULT '',
		title TEXT DEFAULT '',
		slide_count INTEGER NOT NULL DEFAULT 0,
		score INTEGER NOT NULL,
		grade TEXT NOT NULL,
		issue_count INTEGER NOT NULL DEFAULT 0,
		suggestion_count INTEGER NOT NULL DEFAULT 0,
		report TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_reports_created_at ON analysis_reports(created_at);
	CREATE INDEX IF NOT EXISTS idx_reports_presentation_type ON analysis_reports(presentation_type);
	`

	_, err := db.Exec(schema)
	return err
}

// Save stores or replaces the record for a fingerprint.
func (s *SQLiteStore) Save(ctx context.Context, record *Record) error {
	now := time.Now().UTC()

	body, err := encodeReport(record)
	if err != nil {
		return err
	}

	var existingID string
	var createdAt time.Time
	err = s.db.QueryRowContext(ctx,
		"SELECT id, created_at FROM analysis_reports WHERE fingerprint = ?",
		record.Fingerprint,
	).Scan(&existingID, &createdAt)

	if err == nil {
		record.ID = existingID
		record.CreatedAt = createdAt
		record.UpdatedAt = now

		_, err = s.db.ExecContext(ctx, `
			UPDATE analysis_reports SET
				presentation_type = ?,
				title = ?,
				slide_count = ?,
				score = ?,
				grade = ?,
				issue_count = ?,
				suggestion_count = ?,
				report = ?,
				updated_at = ?
			WHERE id = ?
		`,
			record.PresentationType,
			record.Title,
			record.SlideCount,
			record.Score,
			record.Grade,
			record.IssueCount,
			record.SuggestionCount,
			body,
			now,
			existingID,
		)
		if err != nil {
			return fmt.Errorf("failed to update: %w", err)
		}
		return nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check existing: %w", err)
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analysis_reports (
			id, fingerprint, presentation_type, title, slide_count,
			score, grade, issue_count, suggestion_count, report, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
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
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}
	return nil
}

// Get retrieves a record by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+summaryColumns+", report FROM analysis_reports WHERE id = ?", id)

	r, err := scanFull(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return r, nil
}

// GetByFingerprint retrieves a record by request fingerprint.
func (s *SQLiteStore) GetByFingerprint(ctx context.Context, fingerprint string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+summaryColumns+", report FROM analysis_reports WHERE fingerprint = ?", fingerprint)

	r, err := scanFull(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return r, nil
}

// List returns records newest first.
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]*Record, error) {
	return s.list(ctx, false, limit, offset)
}

func (s *SQLiteStore) list(ctx context.Context, withReport bool, limit, offset int) ([]*Record, error) {
	cols := summaryColumns
	if withReport {
		cols += ", report"
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+cols+" FROM analysis_reports ORDER BY created_at DESC, id LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
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
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM analysis_reports").Scan(&count)
	return count, err
}

// Delete removes a record by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM analysis_reports WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	return checkDeleted(res, id)
}

func checkDeleted(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("report %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ExportJSON exports all records to a JSON writer.
func (s *SQLiteStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	all, err := s.list(ctx, true, maxExportLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}
	return writeExport(writer, all)
}

// ImportJSON imports records from a JSON reader.
func (s *SQLiteStore) ImportJSON(ctx context.Context, reader io.Reader) (int, int, error) {
	return importRecords(ctx, s, reader)
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func writeExport(writer io.Writer, records []*Record) error {
	export := &Export{
		Version:    exportVersion,
		ExportedAt: time.Now().UTC(),
		Count:      len(records),
		Records:    records,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

func importRecords(ctx context.Context, store Store, reader io.Reader) (imported int, skipped int, err error) {
	var export Export
	if err := json.NewDecoder(reader).Decode(&export); err != nil {
		return 0, 0, fmt.Errorf("failed to decode JSON: %w", err)
	}

	for _, r := range export.Records {
		if r.ID == "" || r.Report == nil {
			skipped++
			continue
		}

		existing, err := store.Get(ctx, r.ID)
		if err != nil {
			return imported, skipped, fmt.Errorf("failed to check existing: %w", err)
		}
		if existing != nil {
			skipped++
			continue
		}

		existing, err = store.GetByFingerprint(ctx, r.Fingerprint)
		if err != nil {
			return imported, skipped, fmt.Errorf("failed to check existing: %w", err)
		}
		if existing != nil {
			skipped++
			continue
		}

		if err := store.Save(ctx, r); err != nil {
			return imported, skipped, fmt.Errorf("failed to save: %w", err)
		}
		imported++
	}

	return imported, skipped, nil
}
