// Package quiz validates multiple-choice questions and flashcards before they
// are packaged or shown on a quiz slide.
package quiz

import (
	"fmt"
	"strings"
)

// MCQ is a multiple-choice question. Correct holds either the option text or
// a single option letter ("A" for the first option).
type MCQ struct {
	ID          string   `json:"id,omitempty"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     string   `json:"correct"`
	Explanation string   `json:"explanation,omitempty"`
}

// Flashcard is a front/back study card.
type Flashcard struct {
	ID    string   `json:"id,omitempty"`
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Tags  []string `json:"tags,omitempty"`
}

// Result lists the problems found in one item.
type Result struct {
	ID     string   `json:"id,omitempty"`
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

const (
	minOptions = 2
	maxOptions = 6
)

// ValidateMCQ checks question text, option count, duplicates and that the
// correct answer resolves to one of the options.
func ValidateMCQ(q MCQ) Result {
	var issues []string

	if strings.TrimSpace(q.Question) == "" {
		issues = append(issues, "Question text is empty")
	}

	switch n := len(q.Options); {
	case n < minOptions:
		issues = append(issues, fmt.Sprintf("Expected at least %d options, found %d", minOptions, n))
	case n > maxOptions:
		issues = append(issues, fmt.Sprintf("Expected at most %d options, found %d", maxOptions, n))
	}

	seen := make(map[string]bool, len(q.Options))
	for i, opt := range q.Options {
		key := strings.ToLower(strings.TrimSpace(opt))
		if key == "" {
			issues = append(issues, fmt.Sprintf("Option %d is empty", i+1))
			continue
		}
		if seen[key] {
			issues = append(issues, fmt.Sprintf("Duplicate option %q", opt))
		}
		seen[key] = true
	}

	correct := strings.TrimSpace(q.Correct)
	if correct == "" {
		issues = append(issues, "Correct answer is missing")
	} else if _, ok := ResolveCorrect(q.Options, correct); !ok {
		issues = append(issues, fmt.Sprintf("Correct answer %q not found in options", q.Correct))
	}

	return Result{ID: q.ID, Valid: len(issues) == 0, Issues: nonNil(issues)}
}

// ResolveCorrect returns the index of the correct option. An exact text match
// wins; otherwise a single letter maps to its option position.
func ResolveCorrect(options []string, correct string) (int, bool) {
	for i, opt := range options {
		if strings.TrimSpace(opt) == correct {
			return i, true
		}
	}
	if len(correct) == 1 {
		c := strings.ToUpper(correct)[0]
		if c >= 'A' && c <= 'Z' {
			idx := int(c - 'A')
			if idx < len(options) {
				return idx, true
			}
		}
	}
	return -1, false
}

// ValidateFlashcard checks both faces are present and distinct.
func ValidateFlashcard(c Flashcard) Result {
	var issues []string

	front := strings.TrimSpace(c.Front)
	back := strings.TrimSpace(c.Back)
	if front == "" {
		issues = append(issues, "Front of card is empty")
	}
	if back == "" {
		issues = append(issues, "Back of card is empty")
	}
	if front != "" && strings.EqualFold(front, back) {
		issues = append(issues, "Front and back are identical")
	}

	return Result{ID: c.ID, Valid: len(issues) == 0, Issues: nonNil(issues)}
}

// FromFields builds an MCQ from a slide field map. Options may be a list or the
// optionA..optionD fields; correct may be a string or a numeric index.
func FromFields(fields map[string]any) MCQ {
	q := MCQ{}
	q.Question, _ = fields["question"].(string)
	q.Explanation, _ = fields["explanation"].(string)

	switch opts := fields["options"].(type) {
	case []any:
		for _, o := range opts {
			if s, ok := o.(string); ok {
				q.Options = append(q.Options, s)
			}
		}
	case []string:
		q.Options = append(q.Options, opts...)
	}
	if len(q.Options) == 0 {
		for _, key := range []string{"optionA", "optionB", "optionC", "optionD"} {
			if s, ok := fields[key].(string); ok && s != "" {
				q.Options = append(q.Options, s)
			}
		}
	}

	switch c := fields["correct"].(type) {
	case string:
		q.Correct = c
	case float64:
		idx := int(c)
		if idx >= 0 && idx < 26 && float64(idx) == c {
			q.Correct = string(rune('A' + idx))
		} else {
			q.Correct = fmt.Sprintf("%v", c)
		}
	}
	return q
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Set is a batch of items validated together.
type Set struct {
	Questions  []MCQ       `json:"questions"`
	Flashcards []Flashcard `json:"flashcards"`
}

// SetResult is valid only when every item is.
type SetResult struct {
	Valid      bool     `json:"valid"`
	Questions  []Result `json:"questions"`
	Flashcards []Result `json:"flashcards"`
}

// ValidateSet validates every item, keeping input order.
func ValidateSet(s Set) SetResult {
	res := SetResult{
		Valid:      true,
		Questions:  make([]Result, 0, len(s.Questions)),
		Flashcards: make([]Result, 0, len(s.Flashcards)),
	}
	for _, q := range s.Questions {
		r := ValidateMCQ(q)
		res.Valid = res.Valid && r.Valid
		res.Questions = append(res.Questions, r)
	}
	for _, c := range s.Flashcards {
		r := ValidateFlashcard(c)
		res.Valid = res.Valid && r.Valid
		res.Flashcards = append(res.Flashcards, r)
	}
	return res
}
