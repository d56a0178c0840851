package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/presentation-quality-server/internal/domain"
	"github.com/presentation-quality-server/internal/knowledge"
)

const (
	minFontPixels         = 10
	consistencyMinSlides  = 3
	maxBulletStyles       = 2
	maxDateFormats        = 1
	titleCaseMinWordCount = 2
)

var fontSizePattern = regexp.MustCompile(`(?i)font-size\s*:\s*(\d+(?:\.\d+)?)px`)

func checkAccessibility(d *Deck, i int, acc *Accumulator) {
	structure := d.Structure(i)

	if structure.ImagesMissingAlt > 0 {
		acc.Emit(domain.WARNING, "Image missing alt text",
			fmt.Sprintf("Slide %d has %d image(s) without alt text.", i+1, structure.ImagesMissingAlt),
			domain.SlideRef(i), domain.Action(domain.ActionSelectSlide))
	}

	for _, m := range fontSizePattern.FindAllStringSubmatch(d.Markup(i), -1) {
		size, err := strconv.ParseFloat(m[1], 64)
		if err == nil && size < minFontPixels {
			acc.Emit(domain.TIP, "Small font",
				fmt.Sprintf("Slide %d uses a %spx font. Use at least %dpx.", i+1, m[1], minFontPixels),
				domain.SlideRef(i), domain.Action(domain.ActionSelectSlide))
			break
		}
	}

	if structure.Tables > 0 && structure.HeaderCells == 0 {
		acc.Emit(domain.TIP, "Table without headers",
			fmt.Sprintf("Slide %d has a table with no header cells. Screen readers rely on them.", i+1),
			domain.SlideRef(i), domain.Action(domain.ActionSelectSlide))
	}
}

var (
	bulletPattern = regexp.MustCompile(`(?m)^\s*([•◦▪▸►→✓✔*\-–—+]|\d+[.)]|[a-z][.)])\s+`)

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),
		regexp.MustCompile(`\b\d{1,2}\.\d{1,2}\.\d{4}\b`),
		regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.? \d{1,2},? \d{4}\b`),
		regexp.MustCompile(`(?i)\b\d{1,2} (?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]* \d{4}\b`),
	}

	commaGrouped = regexp.MustCompile(`\b\d{1,3}(?:,\d{3})+\b`)
	spaceGrouped = regexp.MustCompile(`\b\d{1,3}(?: \d{3})+\b`)
)

// hasSpaceGrouped reports a number written as "1 000 000", "2 000" or
// "(12 500)". Any other single trailing group directly after a word is read
// as two separate numbers ("aged 85 100 patients").
func hasSpaceGrouped(text string) bool {
	for _, loc := range spaceGrouped.FindAllStringIndex(text, -1) {
		match := text[loc[0]:loc[1]]
		if strings.Count(match, " ") >= 2 || strings.HasSuffix(match, " 000") {
			return true
		}
		before := strings.TrimRight(text[:loc[0]], " \t\n")
		if before == "" {
			return true
		}
		r, _ := utf8.DecodeLastRuneInString(before)
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// bulletListFields hold one bullet per element.
var bulletListFields = []string{"points", "items", "keyPoints"}

// bulletMarkers collects the marker styles of slide i. Scalar fields are
// scanned line by line; list fields element by element.
func bulletMarkers(d *Deck, i int, into map[string]bool) {
	for _, m := range bulletPattern.FindAllStringSubmatch(d.Plain(i), -1) {
		into[bulletStyle(m[1])] = true
	}
	for _, field := range bulletListFields {
		for _, item := range d.Slides[i].List(field) {
			text, ok := item.(string)
			if !ok {
				continue
			}
			for _, m := range bulletPattern.FindAllStringSubmatch(text, -1) {
				into[bulletStyle(m[1])] = true
			}
		}
	}
}

// bulletStyle normalises a list marker so "1." and "2." count as one style.
func bulletStyle(marker string) string {
	r := []rune(marker)
	switch {
	case unicode.IsDigit(r[0]):
		return "1" + string(r[len(r)-1])
	case unicode.IsLetter(r[0]):
		return "a" + string(r[len(r)-1])
	default:
		return marker
	}
}

// titleStyle classifies a multi-word title as "title" or "sentence" case.
// Short words are ignored; titles it cannot tell apart return "".
func titleStyle(title string) string {
	words := strings.Fields(title)
	if len(words) < titleCaseMinWordCount {
		return ""
	}
	upper, lower := 0, 0
	for _, w := range words[1:] {
		r := []rune(w)
		if len(r) <= 3 || !unicode.IsLetter(r[0]) {
			continue
		}
		if unicode.IsUpper(r[0]) {
			upper++
		} else {
			lower++
		}
	}
	switch {
	case upper > 0 && lower == 0:
		return "title"
	case lower > 0 && upper == 0:
		return "sentence"
	default:
		return ""
	}
}

// checkConsistency compares formatting conventions across the deck.
func checkConsistency(d *Deck, acc *Accumulator) {
	if d.Len() < consistencyMinSlides {
		return
	}

	titleStyles := map[string]bool{}
	bullets := map[string]bool{}
	dates := map[int]bool{}
	var hasComma, hasSpace bool

	for i, s := range d.Slides {
		if style := titleStyle(s.String("title")); style != "" {
			titleStyles[style] = true
		}

		bulletMarkers(d, i, bullets)

		text := d.Plain(i)
		for k, p := range datePatterns {
			if p.MatchString(text) {
				dates[k] = true
			}
		}
		hasComma = hasComma || commaGrouped.MatchString(text)
		hasSpace = hasSpace || hasSpaceGrouped(text)
	}

	if len(titleStyles) > 1 {
		acc.Emit(domain.INFO, "Mixed title capitalisation",
			"Some titles use Title Case and others sentence case. Pick one.", nil, nil)
	}
	if len(bullets) > maxBulletStyles {
		acc.Emit(domain.INFO, "Inconsistent bullets",
			fmt.Sprintf("%d different bullet styles are used.", len(bullets)), nil, nil)
	}
	if len(dates) > maxDateFormats {
		acc.Emit(domain.INFO, "Inconsistent date formats",
			fmt.Sprintf("%d different date formats are used.", len(dates)), nil, nil)
	}
	if hasComma && hasSpace {
		acc.Emit(domain.INFO, "Inconsistent number grouping",
			"Large numbers are grouped with both commas and spaces.", nil, nil)
	}
}

// checkRecommendedSequence compares the deck with the archetype named by the
// presentation type. Unknown types are ignored.
func checkRecommendedSequence(d *Deck, acc *Accumulator) {
	archetype, ok := knowledge.LookupArchetype(d.PresentationType)
	if !ok {
		return
	}

	present := d.TypeSet()
	seen := map[string]bool{}
	var missing []string
	for _, t := range archetype.Sequence {
		if present[t] || seen[t] {
			continue
		}
		seen[t] = true
		missing = append(missing, t)
	}
	if len(missing) == 0 {
		return
	}
	acc.Emit(domain.TIP, "Recommended slides missing",
		fmt.Sprintf("A %s usually includes: %s.", archetype.Name, strings.Join(missing, ", ")),
		nil, domain.Action(domain.ActionAddSlide))
}
