package service

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/presentation-quality-server/internal/domain"
	"github.com/presentation-quality-server/internal/extract"
	"github.com/presentation-quality-server/internal/knowledge"
	"github.com/presentation-quality-server/internal/quiz"
)

const (
	minSlides          = 5
	maxSlides          = 30
	minSlideTextLength = 10
	denseTextLength    = 500
	maxTextLength      = 800
	maxListItems       = 12
	maxColumnLength    = 800
	maxTeachingPoints  = 5
	maxKeyPoints       = 6
	maxStatTiles       = 4
	maxTableRows       = 8
	maxTableColumns    = 5
)

func checkSlideCount(d *Deck, acc *Accumulator) {
	n := d.Len()
	switch {
	case n < minSlides:
		acc.Emit(domain.INFO, "Short presentation",
			fmt.Sprintf("Only %d slide(s). A complete teaching session usually needs at least %d.", n, minSlides),
			nil, domain.Action(domain.ActionAddSlide))
	case n > maxSlides:
		acc.Emit(domain.INFO, "Long presentation",
			fmt.Sprintf("%d slides may not fit the time slot. Consider trimming to %d or fewer.", n, maxSlides),
			nil, nil)
	}
}

func checkEmptySlide(d *Deck, i int, acc *Accumulator) {
	if utf8.RuneCountInString(d.Text(i)) >= minSlideTextLength {
		return
	}
	acc.Emit(domain.WARNING, "Empty slide",
		fmt.Sprintf("Slide %d has little or no content.", i+1),
		domain.SlideRef(i), domain.Action(domain.ActionSelectSlide))
}

func checkSlideOrder(d *Deck, acc *Accumulator) {
	if d.Len() == 0 {
		return
	}

	if d.Slides[0].Type != "title" {
		acc.Emit(domain.WARNING, "Title slide not first",
			"The presentation should open with a title slide.",
			domain.SlideRef(0), domain.Action(domain.ActionSelectSlide))
	}

	last := d.Len() - 1
	if !slices.Contains(knowledge.ConclusionTypes, d.Slides[last].Type) {
		acc.Emit(domain.TIP, "Missing wrap-up",
			"End with a take-home, conclusion, references or questions slide.",
			domain.SlideRef(last), domain.Action(domain.ActionAddSlide))
	}
}

// densityValidators hold the type-specific density checks.
var densityValidators = map[string]func(d *Deck, i int, acc *Accumulator){
	"two-column":      checkColumnDensity,
	"teaching-points": countCheck("points", maxTeachingPoints, "Too many teaching points", "teaching points"),
	"key-points":      countCheck("keyPoints", maxKeyPoints, "Too many key points", "key points"),
	"statistics":      countCheck("stats", maxStatTiles, "Too many statistics", "statistics tiles"),
}

func checkDensity(d *Deck, i int, acc *Accumulator) {
	switch n := utf8.RuneCountInString(d.Text(i)); {
	case n > maxTextLength:
		acc.Emit(domain.WARNING, "Too much text",
			fmt.Sprintf("Slide %d has %d characters. Split it or move detail to speaker notes.", i+1, n),
			domain.SlideRef(i), domain.Action(domain.ActionSelectSlide))
	case n > denseTextLength:
		acc.Emit(domain.INFO, "Dense slide",
			fmt.Sprintf("Slide %d has %d characters. Consider trimming.", i+1, n),
			domain.SlideRef(i), domain.Action(domain.ActionSelectSlide))
	}

	structure := d.Structure(i)
	items := len(d.Slides[i].List("items"))
	if structure.ListItems > items {
		items = structure.ListItems
	}
	if items > maxListItems {
		acc.Emit(domain.INFO, "Long list",
			fmt.Sprintf("Slide %d lists %d items. Keep lists to %d or fewer.", i+1, items, maxListItems),
			domain.SlideRef(i), domain.Action(domain.ActionSelectSlide))
	}

	if structure.TableRows > maxTableRows || structure.TableColumns > maxTableColumns {
		acc.Emit(domain.INFO, "Complex table",
			fmt.Sprintf("Slide %d has a %dx%d table. Keep tables within %d rows and %d columns.",
				i+1, structure.TableRows, structure.TableColumns, maxTableRows, maxTableColumns),
			domain.SlideRef(i), domain.Action(domain.ActionSelectSlide))
	}

	if validate, ok := densityValidators[d.Slides[i].Type]; ok {
		validate(d, i, acc)
	}
}

func checkColumnDensity(d *Deck, i int, acc *Accumulator) {
	for _, field := range []string{"leftContent", "rightContent"} {
		n := utf8.RuneCountInString(strings.TrimSpace(extract.FieldText(d.Slides[i], field)))
		if n > maxColumnLength {
			acc.Emit(domain.WARNING, "Column too long",
				fmt.Sprintf("Slide %d: %s has %d characters.", i+1, field, n),
				domain.SlideRef(i), domain.Action(domain.ActionSelectSlide))
		}
	}
}

func countCheck(field string, limit int, title, noun string) func(d *Deck, i int, acc *Accumulator) {
	return func(d *Deck, i int, acc *Accumulator) {
		if n := len(d.Slides[i].List(field)); n > limit {
			acc.Emit(domain.INFO, title,
				fmt.Sprintf("Slide %d has %d %s. Keep it to %d.", i+1, n, noun, limit),
				domain.SlideRef(i), domain.Action(domain.ActionSelectSlide))
		}
	}
}

// fieldAlternates lists fields that satisfy a requirement in place of another.
var fieldAlternates = map[string][]string{
	"options": {"optionA"},
}

// missingFields returns the required fields absent from the slide, in table order.
func missingFields(slide domain.Slide) []string {
	var missing []string
	for _, field := range knowledge.RequiredFields[slide.Type] {
		if slide.Has(field) {
			continue
		}
		satisfied := false
		for _, alt := range fieldAlternates[field] {
			if slide.Has(alt) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			missing = append(missing, field)
		}
	}
	return missing
}

func checkRequiredFields(d *Deck, i int, acc *Accumulator) {
	missing := missingFields(d.Slides[i])
	if len(missing) == 0 {
		return
	}
	acc.Emit(domain.WARNING, "Missing required field",
		fmt.Sprintf("Slide %d (%s) is missing: %s.", i+1, d.Slides[i].Type, strings.Join(missing, ", ")),
		domain.SlideRef(i), domain.Action(domain.ActionSelectSlide))
}

// checkQuizIntegrity only runs on complete quiz slides; missing fields are
// reported by the required-fields rule.
func checkQuizIntegrity(d *Deck, i int, acc *Accumulator) {
	slide := d.Slides[i]
	if slide.Type != "mcq" && slide.Type != "quiz" {
		return
	}
	if len(missingFields(slide)) > 0 {
		return
	}

	result := quiz.ValidateMCQ(quiz.FromFields(slide.Fields))
	for _, problem := range result.Issues {
		acc.Emit(domain.WARNING, "Quiz problem",
			fmt.Sprintf("Slide %d: %s.", i+1, problem),
			domain.SlideRef(i), domain.Action(domain.ActionSelectSlide))
	}
}

func checkPlaceholders(d *Deck, i int, acc *Accumulator) {
	text := d.Lower(i)
	for _, phrase := range knowledge.PlaceholderPhrases {
		if strings.Contains(text, phrase) {
			acc.Emit(domain.WARNING, "Placeholder text",
				fmt.Sprintf("Slide %d still contains placeholder text (%q).", i+1, phrase),
				domain.SlideRef(i), domain.Action(domain.ActionSelectSlide))
			return
		}
	}
}
