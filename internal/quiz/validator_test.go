package quiz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMCQ(t *testing.T) {
	tests := []struct {
		name      string
		q         MCQ
		valid     bool
		wantIssue string
	}{
		{
			name:  "valid by text",
			q:     MCQ{Question: "First-line for delirium?", Options: []string{"Haloperidol", "Reorientation"}, Correct: "Reorientation"},
			valid: true,
		},
		{
			name:  "valid by letter",
			q:     MCQ{Question: "Pick one", Options: []string{"x", "y", "z"}, Correct: "c"},
			valid: true,
		},
		{
			name:      "correct not in options",
			q:         MCQ{Question: "Pick one", Options: []string{"A", "B", "C", "D"}, Correct: "E"},
			wantIssue: "not found in options",
		},
		{
			name:      "missing question",
			q:         MCQ{Options: []string{"a", "b"}, Correct: "a"},
			wantIssue: "Question text is empty",
		},
		{
			name:      "too few options",
			q:         MCQ{Question: "Q", Options: []string{"only"}, Correct: "only"},
			wantIssue: "at least 2 options",
		},
		{
			name:      "duplicate options",
			q:         MCQ{Question: "Q", Options: []string{"Yes", "yes"}, Correct: "Yes"},
			wantIssue: "Duplicate option",
		},
		{
			name:      "missing correct",
			q:         MCQ{Question: "Q", Options: []string{"a", "b"}},
			wantIssue: "Correct answer is missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateMCQ(tt.q)

			assert.Equal(t, tt.valid, res.Valid)
			if tt.valid {
				assert.Empty(t, res.Issues)
				return
			}
			found := false
			for _, issue := range res.Issues {
				if strings.Contains(issue, tt.wantIssue) {
					found = true
				}
			}
			assert.True(t, found, "expected issue containing %q in %v", tt.wantIssue, res.Issues)
		})
	}
}

func TestValidateFlashcard(t *testing.T) {
	assert.True(t, ValidateFlashcard(Flashcard{Front: "Beers list?", Back: "PIMs in older adults"}).Valid)

	res := ValidateFlashcard(Flashcard{Front: "Same", Back: "same"})
	assert.False(t, res.Valid)
	assert.Contains(t, res.Issues, "Front and back are identical")

	res = ValidateFlashcard(Flashcard{})
	assert.Len(t, res.Issues, 2)
}

func TestFromFields(t *testing.T) {
	q := FromFields(map[string]any{
		"question": "Q?",
		"optionA":  "one",
		"optionB":  "two",
		"correct":  1.0,
	})

	require.Len(t, q.Options, 2)
	assert.Equal(t, "B", q.Correct)
	assert.True(t, ValidateMCQ(q).Valid)

	q = FromFields(map[string]any{
		"question": "Q?",
		"options":  []any{"A", "B", "C", "D"},
		"correct":  "E",
	})
	assert.False(t, ValidateMCQ(q).Valid)
}

func TestValidateSet(t *testing.T) {
	res := ValidateSet(Set{
		Questions: []MCQ{
			{ID: "q1", Question: "Q?", Options: []string{"a", "b"}, Correct: "a"},
			{ID: "q2", Question: "Q?", Options: []string{"a"}, Correct: "a"},
		},
		Flashcards: []Flashcard{{ID: "f1", Front: "x", Back: "y"}},
	})

	assert.False(t, res.Valid)
	require.Len(t, res.Questions, 2)
	assert.True(t, res.Questions[0].Valid)
	assert.Equal(t, "q2", res.Questions[1].ID)
	assert.False(t, res.Questions[1].Valid)
	require.Len(t, res.Flashcards, 1)
	assert.True(t, res.Flashcards[0].Valid)

	empty := ValidateSet(Set{})
	assert.True(t, empty.Valid)
	assert.NotNil(t, empty.Questions)
	assert.NotNil(t, empty.Flashcards)
}
