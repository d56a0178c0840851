package service

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/presentation-quality-server/internal/domain"
)

// AnalysisService runs the rule catalog, scores the result and estimates timing.
// It holds no per-call state and is safe for concurrent use.
type AnalysisService struct {
	logger     *logrus.Logger
	ruleEngine *RuleEngine
	scorer     *Scorer
	now        func() time.Time
}

var _ domain.Analyzer = (*AnalysisService)(nil)

// Option customises an AnalysisService.
type Option func(*AnalysisService)

// WithClock sets the clock used for Report.AnalyzedAt.
func WithClock(now func() time.Time) Option {
	return func(s *AnalysisService) {
		s.now = now
	}
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(logger *logrus.Logger, policy domain.ScoringPolicy, opts ...Option) *AnalysisService {
	s := &AnalysisService{
		logger:     logger,
		ruleEngine: NewRuleEngine(logger),
		scorer:     NewScorer(policy),
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rules lists the catalog in evaluation order.
func (s *AnalysisService) Rules() []Rule {
	return s.ruleEngine.Rules()
}

// Analyze produces the full report for a deck.
func (s *AnalysisService) Analyze(slides []domain.Slide, presentationType string) *domain.Report {
	if len(slides) == 0 {
		s.logger.Debug("Analysis requested for empty deck")
		return s.emptyReport(presentationType)
	}

	deck := NewDeck(slides, presentationType)
	acc := s.ruleEngine.EvaluateAll(deck)
	result := s.scorer.Score(slides, acc.Issues, acc.Suggestions)

	report := &domain.Report{
		Score:            result.Score,
		Grade:            result.Grade,
		PresentationType: presentationType,
		Issues:           nonNilFindings(acc.Issues),
		Suggestions:      nonNilFindings(acc.Suggestions),
		Timing:           EstimateTiming(slides),
		Summary:          buildSummary(slides, acc),
		AnalyzedAt:       s.now(),
	}

	s.logger.WithFields(logrus.Fields{
		"slide_count":      len(slides),
		"issue_count":      len(report.Issues),
		"suggestion_count": len(report.Suggestions),
		"score":            report.Score,
	}).Info("Presentation analysis completed")

	return report
}

// Score runs the catalog and returns only the score view.
func (s *AnalysisService) Score(slides []domain.Slide) *domain.ScoreResult {
	if len(slides) == 0 {
		return &domain.ScoreResult{Score: 0, Grade: domain.Grade(0)}
	}
	acc := s.ruleEngine.EvaluateAll(NewDeck(slides, ""))
	return s.scorer.Score(slides, acc.Issues, acc.Suggestions)
}

// RunRule evaluates one rule by id.
func (s *AnalysisService) RunRule(ruleID string, slides []domain.Slide) ([]domain.Finding, error) {
	acc, err := s.ruleEngine.EvaluateRule(ruleID, NewDeck(slides, ""))
	if err != nil {
		return nil, err
	}
	return acc.Findings(), nil
}

// AnalyzeSlide runs the slide-scoped rules against one slide. Deck-level rules
// such as duplicates and consistency need the whole deck and are skipped.
func (s *AnalysisService) AnalyzeSlide(slides []domain.Slide, index int) ([]domain.Finding, error) {
	acc, err := s.ruleEngine.EvaluateSlide(NewDeck(slides, ""), index)
	if err != nil {
		return nil, err
	}
	return acc.Findings(), nil
}

func (s *AnalysisService) emptyReport(presentationType string) *domain.Report {
	return &domain.Report{
		Score:            0,
		Grade:            domain.Grade(0),
		PresentationType: presentationType,
		Issues: []domain.Finding{{
			Rule:            "slide-count",
			Severity:        domain.ERROR,
			Title:           "No slides",
			Message:         "The presentation has no slides.",
			SuggestedAction: domain.Action(domain.ActionAddSlide),
		}},
		Suggestions: []domain.Finding{},
		Timing:      newTiming(0, []int{}),
		Summary:     domain.Summary{SlideTypeCounts: map[string]int{}},
		AnalyzedAt:  s.now(),
	}
}

func buildSummary(slides []domain.Slide, acc *Accumulator) domain.Summary {
	summary := domain.Summary{
		TotalSlides:     len(slides),
		SlideTypeCounts: make(map[string]int),
	}
	for _, sl := range slides {
		summary.SlideTypeCounts[sl.Type]++
	}
	for _, f := range acc.Findings() {
		switch f.Severity {
		case domain.ERROR:
			summary.ErrorCount++
		case domain.WARNING:
			summary.WarningCount++
		case domain.INFO:
			summary.InfoCount++
		case domain.TIP:
			summary.TipCount++
		}
	}
	return summary
}

func nonNilFindings(f []domain.Finding) []domain.Finding {
	if f == nil {
		return []domain.Finding{}
	}
	return f
}
