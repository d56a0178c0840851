package service

import (
	"github.com/presentation-quality-server/internal/domain"
)

// Scorer turns finding counts and the slide-type set into a 0..100 score.
// Only counts matter; the order and content of findings do not.
type Scorer struct {
	policy domain.ScoringPolicy
}

// NewScorer creates a scorer for the given policy.
func NewScorer(policy domain.ScoringPolicy) *Scorer {
	return &Scorer{policy: policy}
}

// Policy returns the scoring policy in use.
func (s *Scorer) Policy() domain.ScoringPolicy {
	return s.policy
}

// Score computes the score, grade and breakdown. Tips never cost points.
func (s *Scorer) Score(slides []domain.Slide, issues, suggestions []domain.Finding) *domain.ScoreResult {
	var errorCount, warningCount, infoCount int
	for _, f := range issues {
		switch f.Severity {
		case domain.ERROR:
			errorCount++
		case domain.WARNING:
			warningCount++
		}
	}
	for _, f := range suggestions {
		if f.Severity == domain.INFO {
			infoCount++
		}
	}

	p := s.policy
	breakdown := domain.ScoreBreakdown{
		ErrorPenalty:   min(errorCount*p.ErrorWeight, p.ErrorCap),
		WarningPenalty: min(warningCount*p.WarningWeight, p.WarningCap),
		InfoPenalty:    min(infoCount*p.InfoWeight, p.InfoCap),
		Bonus:          s.bonus(slides),
	}

	score := p.Base - breakdown.ErrorPenalty - breakdown.WarningPenalty - breakdown.InfoPenalty + breakdown.Bonus
	score = max(0, min(100, score))

	return &domain.ScoreResult{
		Score:     score,
		Grade:     domain.Grade(score),
		Breakdown: breakdown,
	}
}

// bonus depends on slide-type set membership, never on how often a type appears.
func (s *Scorer) bonus(slides []domain.Slide) int {
	present := make(map[string]bool, len(slides))
	for _, sl := range slides {
		present[sl.Type] = true
	}

	total := 0
	for _, b := range s.policy.Bonuses {
		for _, t := range b.SlideTypes {
			if present[t] {
				total += b.Points
				break
			}
		}
	}
	return total
}
