// Package extract turns slide records of unknown shape into text.
//
// Two views are produced. Plain text concatenates natural-language fields for
// content heuristics. Markup text concatenates fields that may carry inline
// structure (tables, lists, images) for structural heuristics. The field lists
// overlap but differ on purpose.
package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/presentation-quality-server/internal/domain"
)

// PlainTextFields is ordered by salience; earlier fields come first in the output.
var PlainTextFields = []string{
	"title",
	"subtitle",
	"presenter",
	"heading",
	"content",
	"text",
	"chiefComplaint",
	"history",
	"hpi",
	"exam",
	"findings",
	"assessment",
	"plan",
	"diagnosis",
	"differential",
	"medications",
	"labs",
	"message1",
	"message2",
	"message3",
	"message4",
	"question",
	"optionA",
	"optionB",
	"optionC",
	"optionD",
	"options",
	"explanation",
	"population",
	"intervention",
	"comparison",
	"outcome",
	"leftContent",
	"rightContent",
	"quote",
	"attribution",
	"caption",
	"points",
	"items",
	"keyPoints",
	"stats",
	"references",
}

// MarkupFields carry embedded formatting.
var MarkupFields = []string{
	"content",
	"html",
	"body",
	"table",
	"leftContent",
	"rightContent",
	"caption",
	"image",
	"items",
	"points",
}

// PlainText concatenates every present natural-language field. Each piece is
// prefixed with one space, so {points:["a","b"]} yields " a b".
func PlainText(slide domain.Slide) string {
	return collect(slide, PlainTextFields)
}

// MarkupText is PlainText over MarkupFields.
func MarkupText(slide domain.Slide) string {
	return collect(slide, MarkupFields)
}

// TextLength is the character count of the trimmed plain text.
func TextLength(slide domain.Slide) int {
	return utf8.RuneCountInString(strings.TrimSpace(PlainText(slide)))
}

// FieldText extracts a single field with the same flattening as PlainText.
func FieldText(slide domain.Slide, field string) string {
	return collect(slide, []string{field})
}

func collect(slide domain.Slide, fields []string) string {
	if slide.Fields == nil {
		return ""
	}

	var b strings.Builder
	for _, name := range fields {
		appendValue(&b, slide.Fields[name])
	}
	return b.String()
}

// appendValue descends exactly one level into sequences: string elements are
// appended, object elements contribute their own string members, anything
// deeper is ignored.
func appendValue(b *strings.Builder, v any) {
	switch val := v.(type) {
	case string:
		b.WriteByte(' ')
		b.WriteString(val)
	case []string:
		for _, item := range val {
			b.WriteByte(' ')
			b.WriteString(item)
		}
	case []any:
		for _, item := range val {
			switch el := item.(type) {
			case string:
				b.WriteByte(' ')
				b.WriteString(el)
			case map[string]any:
				appendMembers(b, el)
			}
		}
	case []map[string]any:
		for _, el := range val {
			appendMembers(b, el)
		}
	}
}

// appendMembers appends string members in sorted key order so output is stable.
func appendMembers(b *strings.Builder, m map[string]any) {
	for _, k := range sortedKeys(m) {
		if s, ok := m[k].(string); ok {
			b.WriteByte(' ')
			b.WriteString(s)
		}
	}
}
