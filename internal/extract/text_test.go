package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presentation-quality-server/internal/domain"
)

func TestPlainText_SequenceFlattening(t *testing.T) {
	slide := domain.NewSlide("teaching-points", map[string]any{
		"points": []any{"a", "b"},
	})

	assert.Equal(t, " a b", PlainText(slide))
}

func TestPlainText_FieldOrder(t *testing.T) {
	slide := domain.NewSlide("hpi", map[string]any{
		"history":        "two falls",
		"title":          "HPI",
		"chiefComplaint": "Falls",
	})

	assert.Equal(t, " HPI Falls two falls", PlainText(slide))
}

func TestPlainText_ObjectElementsOneLevel(t *testing.T) {
	slide := domain.NewSlide("teaching-points", map[string]any{
		"points": []any{
			map[string]any{"point": "Review meds", "detail": "every visit", "weight": 2.0},
			map[string]any{"point": "Screen falls", "nested": map[string]any{"deep": "ignored"}},
			3.0,
		},
	})

	text := PlainText(slide)
	assert.Equal(t, " every visit Review meds Screen falls", text)
	assert.NotContains(t, text, "ignored")
}

func TestPlainText_FlatAndNestedAgree(t *testing.T) {
	var nested, flat domain.Slide
	require.NoError(t, json.Unmarshal([]byte(`{"type":"title","data":{"title":"Case","presenter":"Dr. X"}}`), &nested))
	require.NoError(t, json.Unmarshal([]byte(`{"type":"title","title":"Case","presenter":"Dr. X"}`), &flat))

	assert.Equal(t, PlainText(nested), PlainText(flat))
	assert.Equal(t, " Case Dr. X", PlainText(flat))
}

func TestPlainText_MissingFields(t *testing.T) {
	assert.Equal(t, "", PlainText(domain.Slide{Type: "content"}))
	assert.Equal(t, 0, TextLength(domain.Slide{Type: "content"}))
}

func TestPlainText_DoesNotMutate(t *testing.T) {
	fields := map[string]any{"title": "T", "points": []any{"x"}}
	slide := domain.NewSlide("content", fields)

	first := PlainText(slide)
	second := PlainText(slide)

	assert.Equal(t, first, second)
	assert.Len(t, fields, 2)
}

func TestMarkupText_UsesMarkupFields(t *testing.T) {
	slide := domain.NewSlide("content", map[string]any{
		"title":   "Not markup",
		"content": "<ul><li>one</li></ul>",
		"html":    "<img src=x>",
	})

	markup := MarkupText(slide)
	assert.NotContains(t, markup, "Not markup")
	assert.Contains(t, markup, "<ul>")
	assert.Contains(t, markup, "<img")
}

func TestTextLength_Trimmed(t *testing.T) {
	slide := domain.NewSlide("title", map[string]any{"title": "Case", "presenter": "Dr. X"})

	assert.Equal(t, 10, TextLength(slide))
}

func TestAnalyzeMarkup(t *testing.T) {
	markup := `<ul><li>a</li><li>b</li></ul>
<table><tr><th>A</th><th>B</th><th>C</th></tr><tr><td>1</td><td>2</td></tr></table>
<img src="x.png">`

	s := AnalyzeMarkup(markup)

	assert.Equal(t, 2, s.ListItems)
	assert.Equal(t, 1, s.Tables)
	assert.Equal(t, 2, s.TableRows)
	assert.Equal(t, 3, s.TableColumns)
	assert.Equal(t, 1, s.Images)
	assert.Equal(t, 1, s.ImagesMissingAlt)
	assert.Equal(t, 3, s.HeaderCells)
}

func TestAnalyzeMarkup_ImageAlt(t *testing.T) {
	s := AnalyzeMarkup(`<img src="a.png" alt="Chest x-ray"><img alt="" src="b.png"/><img src="c.png">`)

	assert.Equal(t, 3, s.Images)
	assert.Equal(t, 1, s.ImagesMissingAlt)
}

func TestAnalyzeMarkup_UnclosedRows(t *testing.T) {
	s := AnalyzeMarkup(`<table><tr><td>1<td>2<td>3<td>4<tr><td>5`)

	assert.Equal(t, 2, s.TableRows)
	assert.Equal(t, 4, s.TableColumns)
}

func TestAnalyzeMarkup_PlainText(t *testing.T) {
	assert.Equal(t, Structure{}, AnalyzeMarkup("no tags at all"))
}

func TestFieldText(t *testing.T) {
	slide := domain.NewSlide("two-column", map[string]any{
		"leftContent":  "Left side",
		"rightContent": []any{"r1", "r2"},
	})

	assert.Equal(t, " Left side", FieldText(slide, "leftContent"))
	assert.Equal(t, " r1 r2", FieldText(slide, "rightContent"))
	assert.Equal(t, "", FieldText(slide, "missing"))
}
