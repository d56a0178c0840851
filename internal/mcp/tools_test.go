package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	litecfg "github.com/presentation-quality-server/internal/config"
	"github.com/presentation-quality-server/internal/domain"
	"github.com/presentation-quality-server/internal/history"
	"github.com/presentation-quality-server/internal/service"
)

var testImpl = &mcp.Implementation{Name: "pqs-test", Version: "0.1.0"}

func newTestLiteServer(t *testing.T, withHistory bool) *LiteServer {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress logs during testing

	cfg := &litecfg.LiteConfig{
		DataDir:       t.TempDir(),
		History:       withHistory,
		CacheMaxItems: 16,
		CacheTTL:      time.Minute,
		LogLevel:      "fatal",
	}
	server, err := NewLiteServer(cfg, WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { server.Close() })
	return server
}

func connect(t *testing.T, server *LiteServer) *mcp.ClientSession {
	t.Helper()
	serverT, clientT := mcp.NewInMemoryTransports()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = server.MCPServer().Run(ctx, serverT) }()

	client := mcp.NewClient(testImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args any) (string, bool) {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text, result.IsError
}

func sampleSlides() []map[string]any {
	return []map[string]any{
		{"type": "title", "title": "Delirium on the Ward", "presenter": "Dr. Patel"},
		{"type": "content", "title": "Risk factors", "content": "Age, dementia, polypharmacy and infection raise delirium risk in older adults."},
		{"type": "take-home", "message1": "Screen every older inpatient for delirium daily."},
	}
}

func TestListTools(t *testing.T) {
	session := connect(t, newTestLiteServer(t, false))

	result, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}

	assert.ElementsMatch(t, []string{
		"analyze_presentation", "score_presentation", "check_medications",
		"check_lab_values", "list_templates", "validate_quiz", "list_rules",
	}, names)
}

func TestAnalyzePresentationTool(t *testing.T) {
	session := connect(t, newTestLiteServer(t, false))

	text, isErr := callTool(t, session, "analyze_presentation", map[string]any{
		"slides":           sampleSlides(),
		"presentationType": "lecture",
	})
	require.False(t, isErr, text)

	var report domain.Report
	require.NoError(t, json.Unmarshal([]byte(text), &report))
	assert.Equal(t, 3, report.Summary.TotalSlides)
	assert.Equal(t, domain.Grade(report.Score), report.Grade)
	assert.NotNil(t, report.Issues)

	again, _ := callTool(t, session, "analyze_presentation", map[string]any{
		"slides":           sampleSlides(),
		"presentationType": "lecture",
	})
	assert.JSONEq(t, text, again, "cached report is returned unchanged")
}

func TestAnalyzePresentationTool_EmptyAndInvalid(t *testing.T) {
	session := connect(t, newTestLiteServer(t, false))

	text, isErr := callTool(t, session, "analyze_presentation", map[string]any{"slides": []any{}})
	require.False(t, isErr)
	var report domain.Report
	require.NoError(t, json.Unmarshal([]byte(text), &report))
	assert.Equal(t, 0, report.Score)
	assert.Equal(t, "F", report.Grade)

	text, isErr = callTool(t, session, "analyze_presentation", map[string]any{"slides": "not a list"})
	assert.True(t, isErr)
	assert.Contains(t, text, "invalid arguments")
}

func TestScorePresentationTool(t *testing.T) {
	session := connect(t, newTestLiteServer(t, false))

	text, isErr := callTool(t, session, "score_presentation", map[string]any{"slides": sampleSlides()})
	require.False(t, isErr)

	var result domain.ScoreResult
	require.NoError(t, json.Unmarshal([]byte(text), &result))
	assert.Equal(t, 5, result.Breakdown.Bonus)
}

func TestCheckerTools(t *testing.T) {
	session := connect(t, newTestLiteServer(t, false))

	text, isErr := callTool(t, session, "check_medications", map[string]any{"text": "Digoxin with amiodarone"})
	require.False(t, isErr)
	var meds service.MedicationReport
	require.NoError(t, json.Unmarshal([]byte(text), &meds))
	require.Len(t, meds.Interactions, 1)
	assert.Equal(t, "digoxin", meds.Interactions[0].Drug)

	text, isErr = callTool(t, session, "check_lab_values", map[string]any{"text": "Hemoglobin 9.1 g/dL"})
	require.False(t, isErr)
	var labs service.LabReport
	require.NoError(t, json.Unmarshal([]byte(text), &labs))
	require.Len(t, labs.Values, 1)
	assert.Equal(t, service.LAB_LOW, labs.Values[0].Status)
}

func TestCatalogTools(t *testing.T) {
	session := connect(t, newTestLiteServer(t, false))

	text, isErr := callTool(t, session, "list_rules", map[string]any{})
	require.False(t, isErr)
	var rules struct {
		Rules []struct {
			ID string `json:"id"`
		} `json:"rules"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &rules))
	require.Len(t, rules.Rules, 17)
	assert.Equal(t, "slide-count", rules.Rules[0].ID)

	text, isErr = callTool(t, session, "list_templates", nil)
	require.False(t, isErr)
	assert.Contains(t, text, "archetypes")
}

func TestValidateQuizTool(t *testing.T) {
	session := connect(t, newTestLiteServer(t, false))

	text, isErr := callTool(t, session, "validate_quiz", map[string]any{
		"questions": []map[string]any{
			{"question": "Which drug is on the Beers list?", "options": []string{"Diphenhydramine", "Loratadine"}, "correct": "Diphenhydramine"},
			{"question": "", "options": []string{"A"}, "correct": "B"},
		},
	})
	require.False(t, isErr)

	var result struct {
		Valid     bool `json:"valid"`
		Questions []struct {
			Valid bool `json:"valid"`
		} `json:"questions"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &result))
	assert.False(t, result.Valid)
	require.Len(t, result.Questions, 2)
	assert.True(t, result.Questions[0].Valid)
	assert.False(t, result.Questions[1].Valid)
}

func TestHistoryTools(t *testing.T) {
	server := newTestLiteServer(t, true)
	session := connect(t, server)

	_, isErr := callTool(t, session, "analyze_presentation", map[string]any{"slides": sampleSlides()})
	require.False(t, isErr)

	text, isErr := callTool(t, session, "list_reports", map[string]any{})
	require.False(t, isErr)
	var list struct {
		Reports []history.Record `json:"reports"`
		Total   int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Delirium on the Ward", list.Reports[0].Title)

	text, isErr = callTool(t, session, "get_report", map[string]any{"id": list.Reports[0].ID})
	require.False(t, isErr)
	assert.Contains(t, text, `"report"`)

	text, isErr = callTool(t, session, "get_report", map[string]any{"id": "missing"})
	assert.True(t, isErr)
	assert.Contains(t, text, "not found")

	assert.FileExists(t, filepath.Join(server.config.DataDir, "history.db"))
}

func TestLiteServer_Close_StoreOwnership(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress logs during testing
	ctx := context.Background()

	newConfig := func() *litecfg.LiteConfig {
		return &litecfg.LiteConfig{
			DataDir:       t.TempDir(),
			History:       true,
			CacheMaxItems: 16,
			CacheTTL:      time.Minute,
			LogLevel:      "fatal",
		}
	}

	t.Run("injected store stays open", func(t *testing.T) {
		store, err := history.NewSQLiteStore(filepath.Join(t.TempDir(), "shared.db"))
		require.NoError(t, err)
		defer store.Close()

		server, err := NewLiteServer(newConfig(), WithLogger(logger), WithHistoryStore(store))
		require.NoError(t, err)
		require.NoError(t, server.Close())

		_, err = store.Count(ctx)
		assert.NoError(t, err)
	})

	t.Run("opened store is closed", func(t *testing.T) {
		server, err := NewLiteServer(newConfig(), WithLogger(logger))
		require.NoError(t, err)
		require.NotNil(t, server.history)
		require.NoError(t, server.Close())

		_, err = server.history.Count(ctx)
		assert.Error(t, err)
	})
}
