package service

import (
	"github.com/presentation-quality-server/internal/domain"
)

// Accumulator collects the findings of one rule. Each rule gets its own and
// the analyzer merges them in catalog order, so rules can be tested alone and
// concurrent analyses never share state.
type Accumulator struct {
	rule        string
	Issues      []domain.Finding
	Suggestions []domain.Finding
}

// NewAccumulator creates an empty accumulator tagged with the rule id.
func NewAccumulator(rule string) *Accumulator {
	return &Accumulator{rule: rule}
}

// Add routes a finding to Issues (error, warning) or Suggestions (info, tip).
func (a *Accumulator) Add(f domain.Finding) {
	if f.Rule == "" {
		f.Rule = a.rule
	}
	if f.Severity.IsIssue() {
		a.Issues = append(a.Issues, f)
		return
	}
	a.Suggestions = append(a.Suggestions, f)
}

// Emit is shorthand for Add with a slide reference and optional action.
func (a *Accumulator) Emit(severity domain.Severity, title, message string, slideIndex *int, action *domain.ActionTag) {
	a.Add(domain.Finding{
		Severity:        severity,
		Title:           title,
		Message:         message,
		SlideIndex:      slideIndex,
		SuggestedAction: action,
	})
}

// Merge appends other's findings after a's, preserving order.
func (a *Accumulator) Merge(other *Accumulator) {
	if other == nil {
		return
	}
	a.Issues = append(a.Issues, other.Issues...)
	a.Suggestions = append(a.Suggestions, other.Suggestions...)
}

// Findings returns issues followed by suggestions.
func (a *Accumulator) Findings() []domain.Finding {
	out := make([]domain.Finding, 0, len(a.Issues)+len(a.Suggestions))
	out = append(out, a.Issues...)
	return append(out, a.Suggestions...)
}

// Len is the total number of findings.
func (a *Accumulator) Len() int {
	return len(a.Issues) + len(a.Suggestions)
}
