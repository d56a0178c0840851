// Package domain contains the core entities of the presentation quality engine:
// slides, findings, reports and the scoring policy that ties them together.
//
// The engine is a pure function of a slide list. Nothing in this package performs I/O.
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Severity is the closed, ordered set of finding levels.
// ERROR > WARNING > INFO > TIP, both for prioritisation and score weighting.
type Severity string

const (
	ERROR   Severity = "error"
	WARNING Severity = "warning"
	INFO    Severity = "info"
	TIP     Severity = "tip"
)

// ActionTag names the editor command a finding can be fixed with.
// The dispatch from tag to command lives in the editor, not here.
type ActionTag string

const (
	ActionSelectSlide ActionTag = "select-slide"
	ActionDeleteSlide ActionTag = "delete-slide"
	ActionAddSlide    ActionTag = "add-slide"
)

// Validation errors for engine inputs
var (
	ErrNotFound             = errors.New("not found")
	ErrUnknownRule          = errors.New("unknown rule")
	ErrSlideIndexOutOfRange = errors.New("slide index out of range")
	ErrInvalidSeverity      = errors.New("invalid severity")
)

// IsValid reports whether the severity is one of the four known levels.
func (s Severity) IsValid() bool {
	switch s {
	case ERROR, WARNING, INFO, TIP:
		return true
	default:
		return false
	}
}

// Rank orders severities; higher is more severe. Unknown severities rank 0.
func (s Severity) Rank() int {
	switch s {
	case ERROR:
		return 4
	case WARNING:
		return 3
	case INFO:
		return 2
	case TIP:
		return 1
	default:
		return 0
	}
}

// IsIssue reports whether findings of this severity belong in Report.Issues
// rather than Report.Suggestions.
func (s Severity) IsIssue() bool {
	return s == ERROR || s == WARNING
}

// UnmarshalJSON rejects severities outside the known set, so stored or
// imported reports cannot carry an unrankable finding.
func (s *Severity) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if !Severity(raw).IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidSeverity, raw)
	}
	*s = Severity(raw)
	return nil
}

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// Finding is a single issue or suggestion emitted by a rule.
// SlideIndex is nil for deck-level findings.
type Finding struct {
	Rule            string     `json:"rule"`
	Severity        Severity   `json:"severity"`
	Title           string     `json:"title"`
	Message         string     `json:"message"`
	SlideIndex      *int       `json:"slideIndex"`
	SuggestedAction *ActionTag `json:"suggestedAction"`
}

// SlideRef returns a pointer suitable for Finding.SlideIndex.
func SlideRef(index int) *int {
	return &index
}

// Action returns a pointer suitable for Finding.SuggestedAction.
func Action(tag ActionTag) *ActionTag {
	return &tag
}

// Timing is the projected presentation length.
type Timing struct {
	TotalSeconds int    `json:"totalSeconds"`
	Minutes      int    `json:"minutes"`
	Seconds      int    `json:"seconds"`
	Formatted    string `json:"formatted"`
	PerSlide     []int  `json:"perSlide"`
}

// Summary carries the count-level view of a report.
type Summary struct {
	TotalSlides     int            `json:"totalSlides"`
	SlideTypeCounts map[string]int `json:"slideTypeCounts"`
	ErrorCount      int            `json:"errorCount"`
	WarningCount    int            `json:"warningCount"`
	InfoCount       int            `json:"infoCount"`
	TipCount        int            `json:"tipCount"`
}

// Report is the result of one analysis run. It is built fresh per call and
// never mutated after being returned.
type Report struct {
	Score            int       `json:"score"`
	Grade            string    `json:"grade"`
	PresentationType string    `json:"presentationType,omitempty"`
	Issues           []Finding `json:"issues"`
	Suggestions      []Finding `json:"suggestions"`
	Timing           Timing    `json:"timing"`
	Summary          Summary   `json:"summary"`
	AnalyzedAt       time.Time `json:"analyzedAt"`
}

// ScoreBreakdown explains how a score was reached.
type ScoreBreakdown struct {
	ErrorPenalty   int `json:"errorPenalty"`
	WarningPenalty int `json:"warningPenalty"`
	InfoPenalty    int `json:"infoPenalty"`
	Bonus          int `json:"bonus"`
}

// ScoreResult is the standalone scoring view.
type ScoreResult struct {
	Score     int            `json:"score"`
	Grade     string         `json:"grade"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}
