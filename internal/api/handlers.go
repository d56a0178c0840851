package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/presentation-quality-server/internal/cache"
	"github.com/presentation-quality-server/internal/domain"
	"github.com/presentation-quality-server/internal/history"
	"github.com/presentation-quality-server/internal/knowledge"
	"github.com/presentation-quality-server/internal/middleware"
	"github.com/presentation-quality-server/internal/quiz"
	"github.com/presentation-quality-server/internal/service"
)

// AnalyzeRequest is the body of /analyze-presentation and /score. An absent
// slides member is an empty deck.
type AnalyzeRequest struct {
	Slides           []domain.Slide `json:"slides"`
	PresentationType string         `json:"presentationType"`
}

// SuggestionsRequest narrows analysis to one rule or one slide.
type SuggestionsRequest struct {
	Slides           []domain.Slide `json:"slides"`
	PresentationType string         `json:"presentationType"`
	Rule             string         `json:"rule,omitempty"`
	SlideIndex       *int           `json:"slideIndex,omitempty"`
}

// SuggestionsResponse splits findings by severity class.
type SuggestionsResponse struct {
	Issues      []domain.Finding `json:"issues"`
	Suggestions []domain.Finding `json:"suggestions"`
}

// TextRequest is the body of the standalone checkers. Text wins over slides.
type TextRequest struct {
	Text   string         `json:"text"`
	Slides []domain.Slide `json:"slides"`
}

// BatchRequest carries several decks for one round trip.
type BatchRequest struct {
	Presentations []BatchItem `json:"presentations"`
}

// BatchItem is one deck inside a batch.
type BatchItem struct {
	ID               string         `json:"id,omitempty"`
	Slides           []domain.Slide `json:"slides"`
	PresentationType string         `json:"presentationType"`
}

// BatchResult pairs a report with its position in the request.
type BatchResult struct {
	Index  int            `json:"index"`
	ID     string         `json:"id,omitempty"`
	Report *domain.Report `json:"report"`
}

const (
	defaultReportLimit = 20
	maxReportLimit     = 100
)

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	body := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   Version,
		"rules":     len(s.analyzer.Rules()),
		"history":   s.history != nil,
	}
	if sp, ok := s.cache.(interface{ Stats() cache.Stats }); ok {
		body["cache"] = sp.Stats()
	}
	c.JSON(http.StatusOK, body)
}

// handleAnalyze returns the full report, serving repeats from the cache.
func (s *Server) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBindError(c, err)
		return
	}
	if !s.checkSlideLimit(c, "slides", req.Slides) {
		return
	}

	ctx := c.Request.Context()
	key, err := cache.Key(req.Slides, req.PresentationType)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to fingerprint request")
	}

	if s.cache != nil && key != "" {
		if report, ok := s.cache.Get(ctx, key); ok {
			c.Header("X-Cache", "HIT")
			c.JSON(http.StatusOK, report)
			return
		}
	}

	report := s.analyzer.Analyze(req.Slides, req.PresentationType)

	if s.cache != nil && key != "" {
		s.cache.Set(ctx, key, report)
		c.Header("X-Cache", "MISS")
	}
	s.saveHistory(c, key, req.Slides, report)

	c.JSON(http.StatusOK, report)
}

// saveHistory persists a report. Failures are logged, never returned.
func (s *Server) saveHistory(c *gin.Context, key string, slides []domain.Slide, report *domain.Report) {
	if s.history == nil || key == "" || len(slides) == 0 {
		return
	}
	record := history.NewRecord(key, slides, report)
	if err := s.history.Save(c.Request.Context(), record); err != nil {
		s.logger.WithFields(logrus.Fields{
			"correlation_id": c.GetString(middleware.CorrelationIDKey),
			"error":          err.Error(),
		}).Warn("Failed to save report history")
		return
	}
	c.Header("X-Report-ID", record.ID)
}

// handleScore returns only the score and its breakdown.
func (s *Server) handleScore(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBindError(c, err)
		return
	}
	if !s.checkSlideLimit(c, "slides", req.Slides) {
		return
	}
	c.JSON(http.StatusOK, s.analyzer.Score(req.Slides))
}

// handleSuggestions runs the whole catalog, one rule, or one slide.
func (s *Server) handleSuggestions(c *gin.Context) {
	var req SuggestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBindError(c, err)
		return
	}
	if !s.checkSlideLimit(c, "slides", req.Slides) {
		return
	}
	if req.Rule != "" && req.SlideIndex != nil {
		s.respondValidation(c, "slideIndex", "rule and slideIndex cannot be combined", *req.SlideIndex)
		return
	}

	var (
		findings []domain.Finding
		err      error
	)
	switch {
	case req.Rule != "":
		findings, err = s.analyzer.RunRule(req.Rule, req.Slides)
	case req.SlideIndex != nil:
		findings, err = s.analyzer.AnalyzeSlide(req.Slides, *req.SlideIndex)
	default:
		report := s.analyzer.Analyze(req.Slides, req.PresentationType)
		c.JSON(http.StatusOK, SuggestionsResponse{Issues: report.Issues, Suggestions: report.Suggestions})
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownRule), errors.Is(err, domain.ErrSlideIndexOutOfRange):
			s.respondError(c, http.StatusBadRequest, domain.ErrValidation, err.Error(), "")
		default:
			s.respondError(c, http.StatusInternalServerError, domain.ErrInternalServer, "Analysis failed", "")
		}
		return
	}

	c.JSON(http.StatusOK, splitFindings(findings))
}

// slideLimitError describes a deck over analysis.max_slides, or returns nil.
func (s *Server) slideLimitError(field string, slides []domain.Slide) *domain.ValidationError {
	limit := s.configManager.GetConfig().Analysis.MaxSlides
	if limit <= 0 || len(slides) <= limit {
		return nil
	}
	return domain.NewValidationError(field,
		fmt.Sprintf("deck holds %d slides; the limit is %d", len(slides), limit), len(slides))
}

func (s *Server) checkSlideLimit(c *gin.Context, field string, slides []domain.Slide) bool {
	verr := s.slideLimitError(field, slides)
	if verr == nil {
		return true
	}
	s.respondValidation(c, verr.Field, verr.Message, verr.Value)
	return false
}

func splitFindings(findings []domain.Finding) SuggestionsResponse {
	resp := SuggestionsResponse{Issues: []domain.Finding{}, Suggestions: []domain.Finding{}}
	for _, f := range findings {
		if f.Severity.IsIssue() {
			resp.Issues = append(resp.Issues, f)
		} else {
			resp.Suggestions = append(resp.Suggestions, f)
		}
	}
	return resp
}

// bindText decodes a checker request into the text to scan.
func (s *Server) bindText(c *gin.Context) (string, bool) {
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBindError(c, err)
		return "", false
	}
	if req.Text != "" {
		return req.Text, true
	}
	if req.Slides == nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrValidation, "text or slides is required", "")
		return "", false
	}
	deck := service.NewDeck(req.Slides, "")
	parts := make([]string, 0, deck.Len())
	for i := 0; i < deck.Len(); i++ {
		parts = append(parts, deck.Text(i))
	}
	return strings.Join(parts, "\n"), true
}

// handleLabs runs the lab plausibility checker.
func (s *Server) handleLabs(c *gin.Context) {
	text, ok := s.bindText(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, service.CheckLabValues(text))
}

// handleMedications runs the medication safety checker.
func (s *Server) handleMedications(c *gin.Context) {
	text, ok := s.bindText(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, service.CheckMedications(text))
}

// handleBatch analyses several decks concurrently. Results keep request order.
func (s *Server) handleBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBindError(c, err)
		return
	}

	limits := s.configManager.GetConfig().Analysis
	if len(req.Presentations) == 0 {
		s.respondError(c, http.StatusBadRequest, domain.ErrValidation, "presentations is required", "")
		return
	}
	if len(req.Presentations) > limits.MaxBatchSize {
		s.respondError(c, http.StatusBadRequest, domain.ErrValidation,
			fmt.Sprintf("batch holds %d presentations; the limit is %d", len(req.Presentations), limits.MaxBatchSize), "")
		return
	}
	for i, item := range req.Presentations {
		if !s.checkSlideLimit(c, fmt.Sprintf("presentations[%d].slides", i), item.Slides) {
			return
		}
	}

	results := make([]BatchResult, len(req.Presentations))
	g, ctx := errgroup.WithContext(c.Request.Context())
	if limits.BatchConcurrency > 0 {
		g.SetLimit(limits.BatchConcurrency)
	}
	for i, item := range req.Presentations {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("presentation %d: analysis panicked: %v", i, r)
				}
			}()
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = BatchResult{
				Index:  i,
				ID:     item.ID,
				Report: s.analyzer.Analyze(item.Slides, item.PresentationType),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.WithError(err).Error("Batch analysis failed")
		s.respondError(c, http.StatusInternalServerError, domain.ErrInternalServer, "Batch analysis failed", "")
		return
	}

	s.logger.WithField("count", len(results)).Info("Batch analysis completed")
	c.JSON(http.StatusOK, gin.H{"count": len(results), "results": results})
}

// handleValidateQuiz validates questions and flashcards.
func (s *Server) handleValidateQuiz(c *gin.Context) {
	var req quiz.Set
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBindError(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz.ValidateSet(req))
}

// handleTemplates lists presentation archetypes and slide types.
func (s *Server) handleTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, knowledge.TemplateCatalog())
}

// handleRules lists the rule catalog in evaluation order.
func (s *Server) handleRules(c *gin.Context) {
	rules := s.analyzer.Rules()
	c.JSON(http.StatusOK, gin.H{"count": len(rules), "rules": rules})
}
