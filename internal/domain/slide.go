package domain

import (
	"encoding/json"
	"fmt"
)

// Slide is one unit of presentation content: a type tag plus a field mapping.
//
// Producers emit two shapes, {type, data:{...}} and the flattened {type, ...fields}.
// UnmarshalJSON resolves both to Fields once, so rules never look at the shape.
type Slide struct {
	Type   string         `json:"type"`
	Fields map[string]any `json:"data"`
}

// NewSlide builds a slide from a type and field map.
func NewSlide(slideType string, fields map[string]any) Slide {
	if fields == nil {
		fields = map[string]any{}
	}
	return Slide{Type: slideType, Fields: fields}
}

// UnmarshalJSON accepts both the nested and the flattened slide shape.
func (s *Slide) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("slide must be a JSON object: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("slide must be a JSON object")
	}

	if t, ok := raw["type"].(string); ok {
		s.Type = t
	} else {
		s.Type = ""
	}

	if data, ok := raw["data"].(map[string]any); ok {
		s.Fields = data
		return nil
	}
	s.Fields = raw
	return nil
}

// MarshalJSON always emits the nested shape.
func (s Slide) MarshalJSON() ([]byte, error) {
	fields := s.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	return json.Marshal(struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}{Type: s.Type, Data: fields})
}

// String returns the field value when it is a string, otherwise "".
func (s Slide) String(field string) string {
	if s.Fields == nil {
		return ""
	}
	v, _ := s.Fields[field].(string)
	return v
}

// Has reports whether the field is present and non-empty.
// Strings must be non-empty, sequences must have at least one element.
func (s Slide) Has(field string) bool {
	if s.Fields == nil {
		return false
	}
	switch v := s.Fields[field].(type) {
	case nil:
		return false
	case string:
		return len(v) > 0
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

// List returns a sequence-valued field as []any, or nil when the field is
// absent or not a sequence.
func (s Slide) List(field string) []any {
	if s.Fields == nil {
		return nil
	}
	switch v := s.Fields[field].(type) {
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out
	default:
		return nil
	}
}
