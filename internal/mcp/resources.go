package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/presentation-quality-server/internal/domain"
	"github.com/presentation-quality-server/internal/knowledge"
)

const (
	resourceScheme   = "pq://"
	reportURIPrefix  = resourceScheme + "reports/"
	jsonMIMEType     = "application/json"
	reviewPromptName = "review_presentation"
)

// staticResource is reference data rendered once per read.
type staticResource struct {
	name        string
	description string
	data        func(s *LiteServer) any
}

var staticResources = []staticResource{
	{"templates", "Presentation archetypes and known slide types", func(*LiteServer) any {
		return knowledge.TemplateCatalog()
	}},
	{"rules", "Analysis rules in evaluation order", func(s *LiteServer) any {
		return s.analyzer.Rules()
	}},
	{"medications", "Beers criteria, interaction pairs and high-risk drugs", func(*LiteServer) any {
		return map[string]any{
			"beers":        knowledge.BeersCriteria,
			"interactions": knowledge.DrugInteractions,
			"highRisk":     knowledge.HighRiskDrugs,
		}
	}},
	{"labs", "Reference ranges used by the lab value checker", func(*LiteServer) any {
		return knowledge.LabRanges
	}},
}

func (s *LiteServer) registerResources() {
	for _, res := range staticResources {
		res := res
		uri := resourceScheme + res.name
		s.mcpServer.AddResource(&mcp.Resource{
			URI:         uri,
			Name:        res.name,
			Description: res.description,
			MIMEType:    jsonMIMEType,
		}, func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			return jsonResource(uri, res.data(s))
		})
	}

	if s.history != nil {
		s.mcpServer.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: reportURIPrefix + "{id}",
			Name:        "report",
			Description: "A stored analysis report by id",
			MIMEType:    jsonMIMEType,
		}, s.readReport)
	}
}

func (s *LiteServer) readReport(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	id := strings.TrimPrefix(uri, reportURIPrefix)
	if id == "" || id == uri {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	record, err := s.history.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	if record == nil {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	return jsonResource(uri, record)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: jsonMIMEType, Text: string(data)}},
	}, nil
}

func (s *LiteServer) registerPrompts() {
	s.mcpServer.AddPrompt(&mcp.Prompt{
		Name:        reviewPromptName,
		Description: "Guide a reviewer through analysing a clinical slide deck and prioritising fixes",
		Arguments: []*mcp.PromptArgument{
			{Name: "presentationType", Description: "Archetype id such as lecture or case-presentation"},
			{Name: "audience", Description: "Who the talk is for, e.g. residents or nurses"},
		},
	}, s.reviewPrompt)
}

func (s *LiteServer) reviewPrompt(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := req.Params.Arguments
	presentationType := args["presentationType"]

	var b strings.Builder
	b.WriteString("Review the slide deck I will provide for content quality.\n\n")
	b.WriteString("1. Call analyze_presentation with the slides")
	if presentationType != "" {
		archetype, ok := knowledge.LookupArchetype(presentationType)
		if !ok {
			return nil, fmt.Errorf("unknown presentation type %q: %w", presentationType, domain.ErrNotFound)
		}
		fmt.Fprintf(&b, " and presentationType %q.\n", archetype.ID)
		fmt.Fprintf(&b, "   The recommended %s sequence is: %s.\n", archetype.Name, strings.Join(archetype.Sequence, ", "))
	} else {
		b.WriteString(".\n")
	}
	b.WriteString("2. Fix every error first, then warnings. Quote the slide number for each issue.\n")
	b.WriteString("3. Run check_medications and check_lab_values on any slide that mentions drugs or labs.\n")
	b.WriteString("4. If the deck contains questions, run validate_quiz on them.\n")
	b.WriteString("5. Finish with the score, the grade and the three changes that would raise the score most.\n")
	if audience := args["audience"]; audience != "" {
		fmt.Fprintf(&b, "\nThe audience is %s; flag content pitched at the wrong level.\n", audience)
	}

	return &mcp.GetPromptResult{
		Description: "Slide deck review",
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: b.String()}},
		},
	}, nil
}

