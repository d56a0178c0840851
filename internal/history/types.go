// Package history persists analysis snapshots so past reports can be listed,
// reopened and exported. Storage is optional; the engine never depends on it.
package history

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/presentation-quality-server/internal/domain"
)

// Record is one stored analysis.
type Record struct {
	ID               string         `json:"id"`
	Fingerprint      string         `json:"fingerprint"`
	PresentationType string         `json:"presentation_type,omitempty"`
	Title            string         `json:"title,omitempty"`
	SlideCount       int            `json:"slide_count"`
	Score            int            `json:"score"`
	Grade            string         `json:"grade"`
	IssueCount       int            `json:"issue_count"`
	SuggestionCount  int            `json:"suggestion_count"`
	Report           *domain.Report `json:"report,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// NewRecord builds a record for a finished report. The deck title is taken
// from the first slide that has one.
func NewRecord(fingerprint string, slides []domain.Slide, report *domain.Report) *Record {
	title := ""
	for _, s := range slides {
		if t := s.String("title"); t != "" {
			title = t
			break
		}
	}
	return &Record{
		ID:               uuid.NewString(),
		Fingerprint:      fingerprint,
		PresentationType: report.PresentationType,
		Title:            title,
		SlideCount:       len(slides),
		Score:            report.Score,
		Grade:            report.Grade,
		IssueCount:       len(report.Issues),
		SuggestionCount:  len(report.Suggestions),
		Report:           report,
	}
}

// Store defines the interface for report history storage operations.
type Store interface {
	// Save stores a record. A record with the same fingerprint is replaced
	// and keeps its original ID.
	Save(ctx context.Context, record *Record) error

	// Get retrieves a record with its full report, or nil when absent.
	Get(ctx context.Context, id string) (*Record, error)

	// GetByFingerprint retrieves the record for a request fingerprint, or nil
	// when absent.
	GetByFingerprint(ctx context.Context, fingerprint string) (*Record, error)

	// List returns records newest first, without report bodies.
	List(ctx context.Context, limit, offset int) ([]*Record, error)

	// Count returns the total number of records.
	Count(ctx context.Context) (int64, error)

	// Delete removes a record. Returns domain.ErrNotFound when absent.
	Delete(ctx context.Context, id string) error

	// ExportJSON writes every record, including report bodies.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON loads an export. Records whose ID or fingerprint already
	// exists are skipped; stored reports are never overwritten.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	// Close closes the store and releases resources.
	Close() error
}

// Export represents the JSON export format.
type Export struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Count      int       `json:"count"`
	Records    []*Record `json:"records"`
}

const exportVersion = "1.0"

// maxExportLimit is the maximum number of entries to export at once.
const maxExportLimit = 1000000
