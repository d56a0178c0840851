package service

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/presentation-quality-server/internal/domain"
	"github.com/presentation-quality-server/internal/knowledge"
)

const (
	minDomainKeywords     = 3
	domainCheckMinSlides  = 5
	duplicateSimilarity   = 0.8
	duplicateMinLength    = 50
	maxSlidesPerType      = 5
	longSentenceWords     = 25
	maxLongSentences      = 2
	passiveVoiceThreshold = 6
	jargonThreshold       = 3
)

func checkDomainFocus(d *Deck, acc *Accumulator) {
	if d.Len() <= domainCheckMinSlides {
		return
	}

	found := len(domainKeywordsIn(d.AllLower()))
	if found >= minDomainKeywords {
		return
	}
	acc.Emit(domain.TIP, "Strengthen geriatric focus",
		fmt.Sprintf("Only %d geriatric concept(s) mentioned. Consider covering frailty, falls, polypharmacy, cognition or goals of care.", found),
		nil, nil)
}

var domainKeywordPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(knowledge.GeriatricsKeywords))
	for i, kw := range knowledge.GeriatricsKeywords {
		out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
	}
	return out
}()

// domainKeywordsIn returns the distinct keywords present as whole words.
// A keyword contained in a longer matched keyword is not counted again, so
// "comprehensive geriatric assessment" is one concept.
func domainKeywordsIn(text string) []string {
	var matched []string
	for i, p := range domainKeywordPatterns {
		if p.MatchString(text) {
			matched = append(matched, knowledge.GeriatricsKeywords[i])
		}
	}
	var out []string
	for _, kw := range matched {
		subsumed := false
		for _, other := range matched {
			if len(other) > len(kw) && strings.Contains(other, kw) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			out = append(out, kw)
		}
	}
	return out
}

type abbreviationPattern struct {
	abbr    string
	pattern *regexp.Regexp
}

var abbreviationPatterns = func() []abbreviationPattern {
	out := make([]abbreviationPattern, len(knowledge.MedicalAbbreviations))
	for i, abbr := range knowledge.MedicalAbbreviations {
		out[i] = abbreviationPattern{abbr: abbr, pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(abbr) + `\b`)}
	}
	return out
}()

// definedNearby reports whether the match at [start,end) sits next to a
// parenthesis: "Heart failure (CHF)" or "CHF (heart failure)".
func definedNearby(text string, start, end int) bool {
	before := strings.TrimRight(text[:start], " ")
	after := strings.TrimLeft(text[end:], " ")
	return strings.HasSuffix(before, "(") || strings.HasPrefix(after, "(")
}

// checkAbbreviations reports abbreviations that are never defined anywhere in
// the deck. One definition covers every later use.
func checkAbbreviations(d *Deck, acc *Accumulator) {
	var undefined []string
	firstSlide := -1

	for _, ap := range abbreviationPatterns {
		seenAt := -1
		defined := false
		for i := range d.Slides {
			text := d.Plain(i)
			for _, loc := range ap.pattern.FindAllStringIndex(text, -1) {
				if seenAt < 0 {
					seenAt = i
				}
				if definedNearby(text, loc[0], loc[1]) {
					defined = true
					break
				}
			}
			if defined {
				break
			}
		}
		if seenAt >= 0 && !defined {
			undefined = append(undefined, ap.abbr)
			if firstSlide < 0 || seenAt < firstSlide {
				firstSlide = seenAt
			}
		}
	}

	if len(undefined) == 0 {
		return
	}
	acc.Emit(domain.INFO, "Undefined abbreviations",
		fmt.Sprintf("Spell out on first use: %s.", strings.Join(undefined, ", ")),
		domain.SlideRef(firstSlide), domain.Action(domain.ActionSelectSlide))
}

func wordSet(text string) map[string]struct{} {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// jaccard is |a ∩ b| / |a ∪ b|; two empty sets are not similar.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// checkDuplicates flags each slide that repeats an earlier one, pointing at
// the first earlier match.
func checkDuplicates(d *Deck, acc *Accumulator) {
	sets := make([]map[string]struct{}, d.Len())
	for i := range d.Slides {
		if utf8.RuneCountInString(d.Text(i)) > duplicateMinLength {
			sets[i] = wordSet(d.Lower(i))
		}
	}

	for j := 1; j < len(sets); j++ {
		if sets[j] == nil {
			continue
		}
		for i := 0; i < j; i++ {
			if sets[i] == nil {
				continue
			}
			if jaccard(sets[i], sets[j]) > duplicateSimilarity {
				acc.Emit(domain.WARNING, "Duplicate content",
					fmt.Sprintf("Slide %d repeats most of slide %d.", j+1, i+1),
					domain.SlideRef(j), domain.Action(domain.ActionDeleteSlide))
				break
			}
		}
	}
}

func checkVariety(d *Deck, acc *Accumulator) {
	counts := make(map[string]int)
	var order []string
	for _, s := range d.Slides {
		if slices.Contains(knowledge.GenericSlideTypes, s.Type) {
			continue
		}
		if counts[s.Type] == 0 {
			order = append(order, s.Type)
		}
		counts[s.Type]++
	}

	for _, t := range order {
		if counts[t] > maxSlidesPerType {
			acc.Emit(domain.INFO, "Low slide variety",
				fmt.Sprintf("%d slides use the %q layout. Mix in other slide types.", counts[t], t),
				nil, nil)
		}
	}
}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

func checkReadability(d *Deck, i int, acc *Accumulator) {
	text := d.Plain(i)

	long := 0
	for _, sentence := range sentenceSplit.Split(text, -1) {
		if len(strings.Fields(sentence)) > longSentenceWords {
			long++
		}
	}
	if long > maxLongSentences {
		acc.Emit(domain.INFO, "Long sentences",
			fmt.Sprintf("Slide %d has %d sentences over %d words. Shorten them for the audience.", i+1, long, longSentenceWords),
			domain.SlideRef(i), domain.Action(domain.ActionSelectSlide))
	}

	if n := len(knowledge.PassiveVoice.FindAllStringIndex(text, -1)); n >= passiveVoiceThreshold {
		acc.Emit(domain.TIP, "Prefer active voice",
			fmt.Sprintf("Slide %d has %d passive constructions.", i+1, n),
			domain.SlideRef(i), domain.Action(domain.ActionSelectSlide))
	}

	lower := d.Lower(i)
	var jargon []string
	for _, term := range knowledge.JargonTerms {
		if strings.Contains(lower, term) {
			jargon = append(jargon, term)
		}
	}
	if len(jargon) >= jargonThreshold {
		acc.Emit(domain.TIP, "Simplify wording",
			fmt.Sprintf("Slide %d uses jargon: %s.", i+1, strings.Join(jargon, ", ")),
			domain.SlideRef(i), domain.Action(domain.ActionSelectSlide))
	}
}
