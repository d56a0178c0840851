package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/presentation-quality-server/internal/cache"
	"github.com/presentation-quality-server/internal/domain"
	"github.com/presentation-quality-server/internal/history"
	"github.com/presentation-quality-server/internal/knowledge"
	"github.com/presentation-quality-server/internal/quiz"
	"github.com/presentation-quality-server/internal/service"
)

type analyzeArgs struct {
	Slides           []domain.Slide `json:"slides"`
	PresentationType string         `json:"presentationType"`
}

type textArgs struct {
	Text string `json:"text"`
}

type listReportsArgs struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type getReportArgs struct {
	ID string `json:"id"`
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

var slidesSchema = map[string]any{
	"type":        "array",
	"description": "Slides, each either {type, ...fields} or {type, data: {...fields}}",
	"items":       map[string]any{"type": "object"},
}

// addTool registers a tool whose arguments decode into A. Decoding failures and
// handler errors come back as tool errors, not protocol errors.
func addTool[A any](s *LiteServer, tool *mcp.Tool, handle func(ctx context.Context, args *A) (any, error)) {
	s.mcpServer.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args A
		if raw := req.Params.Arguments; len(raw) > 0 {
			if err := json.Unmarshal(raw, &args); err != nil {
				return toolError(fmt.Errorf("invalid arguments: %w", err)), nil
			}
		}

		resp, err := handle(ctx, &args)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"tool_name": tool.Name,
				"error":     err.Error(),
			}).Warn("Tool call failed")
			return toolError(err), nil
		}

		data, err := json.Marshal(resp)
		if err != nil {
			return toolError(fmt.Errorf("marshal: %w", err)), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
	s.logger.WithField("tool_name", tool.Name).Debug("Registered MCP tool")
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}

func (s *LiteServer) registerTools() {
	addTool(s, &mcp.Tool{
		Name:        "analyze_presentation",
		Description: "Analyze a slide deck for content quality. Returns score, grade, issues, suggestions, timing and summary.",
		InputSchema: inputSchema(map[string]any{
			"slides":           slidesSchema,
			"presentationType": map[string]any{"type": "string", "description": "Optional archetype such as lecture or case-presentation"},
		}, []string{"slides"}),
	}, s.analyzePresentation)

	addTool(s, &mcp.Tool{
		Name:        "score_presentation",
		Description: "Score a slide deck and explain the penalties and bonuses.",
		InputSchema: inputSchema(map[string]any{"slides": slidesSchema}, []string{"slides"}),
	}, func(_ context.Context, args *analyzeArgs) (any, error) {
		return s.analyzer.Score(args.Slides), nil
	})

	addTool(s, &mcp.Tool{
		Name:        "check_medications",
		Description: "Check text for Beers-list medications, drug interactions and unmonitored high-risk drugs.",
		InputSchema: inputSchema(map[string]any{
			"text": map[string]any{"type": "string", "description": "Free text to scan"},
		}, []string{"text"}),
	}, func(_ context.Context, args *textArgs) (any, error) {
		return service.CheckMedications(args.Text), nil
	})

	addTool(s, &mcp.Tool{
		Name:        "check_lab_values",
		Description: "Parse lab values from text and flag values outside normal or plausible ranges.",
		InputSchema: inputSchema(map[string]any{
			"text": map[string]any{"type": "string", "description": "Free text to scan"},
		}, []string{"text"}),
	}, func(_ context.Context, args *textArgs) (any, error) {
		return service.CheckLabValues(args.Text), nil
	})

	addTool(s, &mcp.Tool{
		Name:        "list_templates",
		Description: "List presentation archetypes and the known slide types.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}, func(_ context.Context, _ *struct{}) (any, error) {
		return knowledge.TemplateCatalog(), nil
	})

	addTool(s, &mcp.Tool{
		Name:        "validate_quiz",
		Description: "Validate multiple-choice questions and flashcards.",
		InputSchema: inputSchema(map[string]any{
			"questions":  map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
			"flashcards": map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
		}, nil),
	}, func(_ context.Context, args *quiz.Set) (any, error) {
		return quiz.ValidateSet(*args), nil
	})

	addTool(s, &mcp.Tool{
		Name:        "list_rules",
		Description: "List the analysis rules in evaluation order.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}, func(_ context.Context, _ *struct{}) (any, error) {
		return map[string]any{"rules": s.analyzer.Rules()}, nil
	})

	if s.history == nil {
		return
	}

	addTool(s, &mcp.Tool{
		Name:        "list_reports",
		Description: "List previously analyzed presentations, newest first.",
		InputSchema: inputSchema(map[string]any{
			"limit":  map[string]any{"type": "integer", "minimum": 1, "maximum": 100},
			"offset": map[string]any{"type": "integer", "minimum": 0},
		}, nil),
	}, func(ctx context.Context, args *listReportsArgs) (any, error) {
		limit := args.Limit
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		offset := args.Offset
		if offset < 0 {
			offset = 0
		}
		records, err := s.history.List(ctx, limit, offset)
		if err != nil {
			return nil, err
		}
		total, err := s.history.Count(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"reports": records, "total": total}, nil
	})

	addTool(s, &mcp.Tool{
		Name:        "get_report",
		Description: "Fetch a stored analysis report by id.",
		InputSchema: inputSchema(map[string]any{
			"id": map[string]any{"type": "string"},
		}, []string{"id"}),
	}, func(ctx context.Context, args *getReportArgs) (any, error) {
		record, err := s.history.Get(ctx, args.ID)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, fmt.Errorf("report %s: %w", args.ID, domain.ErrNotFound)
		}
		return record, nil
	})
}

func (s *LiteServer) analyzePresentation(ctx context.Context, args *analyzeArgs) (any, error) {
	key, err := cache.Key(args.Slides, args.PresentationType)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if report, ok := s.cache.Get(ctx, key); ok {
			return report, nil
		}
	}

	report := s.analyzer.Analyze(args.Slides, args.PresentationType)
	if s.cache != nil {
		s.cache.Set(ctx, key, report)
	}

	if s.history != nil && len(args.Slides) > 0 {
		if err := s.history.Save(ctx, history.NewRecord(key, args.Slides, report)); err != nil {
			s.logger.WithError(err).Warn("Failed to save report history")
		}
	}
	return report, nil
}
