package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityConstants(t *testing.T) {
	tests := []struct {
		name     string
		value    Severity
		expected string
		rank     int
		issue    bool
	}{
		{"Error", ERROR, "error", 4, true},
		{"Warning", WARNING, "warning", 3, true},
		{"Info", INFO, "info", 2, false},
		{"Tip", TIP, "tip", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.value.String())
			assert.Equal(t, tt.rank, tt.value.Rank())
			assert.Equal(t, tt.issue, tt.value.IsIssue())
			assert.True(t, tt.value.IsValid())
		})
	}

	assert.False(t, Severity("fatal").IsValid())
	assert.Equal(t, 0, Severity("fatal").Rank())
}

func TestSeverity_UnmarshalJSON(t *testing.T) {
	var f Finding
	require.NoError(t, json.Unmarshal([]byte(`{"rule":"x","severity":"warning"}`), &f))
	assert.Equal(t, WARNING, f.Severity)

	err := json.Unmarshal([]byte(`{"rule":"x","severity":"fatal"}`), &f)
	assert.ErrorIs(t, err, ErrInvalidSeverity)
}

func TestGrade(t *testing.T) {
	tests := []struct {
		score int
		grade string
	}{
		{100, "A"}, {90, "A"}, {89, "B"}, {80, "B"}, {79, "C"},
		{70, "C"}, {69, "D"}, {60, "D"}, {59, "F"}, {0, "F"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.grade, Grade(tt.score), "score %d", tt.score)
	}
}

func TestDefaultScoringPolicy(t *testing.T) {
	p := DefaultScoringPolicy()

	assert.Equal(t, 100, p.Base)
	assert.Equal(t, 10, p.ErrorWeight)
	assert.Equal(t, 40, p.ErrorCap)
	assert.Equal(t, 5, p.WarningWeight)
	assert.Equal(t, 30, p.WarningCap)
	assert.Equal(t, 2, p.InfoWeight)
	assert.Equal(t, 20, p.InfoCap)
	require.Len(t, p.Bonuses, 3)
	assert.Equal(t, 5, p.Bonuses[0].Points)
	assert.Contains(t, p.Bonuses[0].SlideTypes, "take-home")
}

func TestSlide_UnmarshalNested(t *testing.T) {
	var s Slide
	err := json.Unmarshal([]byte(`{"type":"title","data":{"title":"Case","presenter":"Dr. X"}}`), &s)
	require.NoError(t, err)

	assert.Equal(t, "title", s.Type)
	assert.Equal(t, "Case", s.String("title"))
	assert.Equal(t, "Dr. X", s.String("presenter"))
}

func TestSlide_UnmarshalFlat(t *testing.T) {
	var s Slide
	err := json.Unmarshal([]byte(`{"type":"hpi","chiefComplaint":"Falls","points":["a","b"]}`), &s)
	require.NoError(t, err)

	assert.Equal(t, "hpi", s.Type)
	assert.Equal(t, "Falls", s.String("chiefComplaint"))
	assert.Len(t, s.List("points"), 2)
}

func TestSlide_UnmarshalRejectsNonObject(t *testing.T) {
	var slides []Slide
	err := json.Unmarshal([]byte(`["not a slide"]`), &slides)
	assert.Error(t, err)
}

func TestSlide_MarshalNested(t *testing.T) {
	s := NewSlide("content", map[string]any{"content": "hello"})

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"content","data":{"content":"hello"}}`, string(b))
}

func TestSlide_HasTreatsEmptyAsMissing(t *testing.T) {
	s := NewSlide("title", map[string]any{
		"title":     "",
		"presenter": "Dr. Y",
		"points":    []any{},
		"count":     3.0,
	})

	assert.False(t, s.Has("title"))
	assert.True(t, s.Has("presenter"))
	assert.False(t, s.Has("points"))
	assert.True(t, s.Has("count"))
	assert.False(t, s.Has("absent"))
	assert.Equal(t, "", s.String("count"))
}
