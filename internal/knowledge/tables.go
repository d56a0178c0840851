// Package knowledge holds the static, read-only reference data the rule catalog
// consults. Tables are package-level values initialised once and never written
// after init, so they are safe to share across concurrent analyses.
package knowledge

import "regexp"

// GeriatricsKeywords are the domain terms counted by the domain-focus rule.
var GeriatricsKeywords = []string{
	"geriatric",
	"elderly",
	"older adult",
	"frailty",
	"frail",
	"polypharmacy",
	"falls",
	"delirium",
	"dementia",
	"cognitive",
	"functional status",
	"adl",
	"iadl",
	"sarcopenia",
	"incontinence",
	"deprescribing",
	"beers",
	"comprehensive geriatric assessment",
	"goals of care",
	"advance directive",
	"palliative",
	"nursing home",
	"caregiver",
	"mobility",
	"osteoporosis",
	"malnutrition",
}

// MedicalAbbreviations must be spelled out on first use.
var MedicalAbbreviations = []string{
	"CHF", "COPD", "CKD", "HTN", "DM", "MI", "CVA", "TIA", "UTI", "AKI",
	"BPH", "GERD", "ADL", "IADL", "MMSE", "MoCA", "CGA", "DVT", "PE", "AF",
	"SOB", "NPO", "PRN", "BID", "TID", "QID", "GFR", "eGFR", "BMI", "OSA",
}

// PlaceholderPhrases signal unfinished slide content. Matched lowercase.
var PlaceholderPhrases = []string{
	"lorem ipsum",
	"todo",
	"tbd",
	"[insert",
	"insert here",
	"placeholder",
	"xxx",
	"click to add",
	"your text here",
	"add text here",
	"coming soon",
}

// ConclusionTypes are the slide types that count as a wrap-up.
var ConclusionTypes = []string{"take-home", "conclusion", "references", "questions"}

// GenericSlideTypes are excluded from the slide-variety rule.
// "content" is intentionally absent: a deck of identical content slides must
// still be flagged.
var GenericSlideTypes = []string{"bullets", "bullet-list", "text"}

// JargonTerms inflate prose without adding meaning.
var JargonTerms = []string{
	"utilize",
	"utilization",
	"facilitate",
	"paradigm",
	"synergy",
	"leverage",
	"operationalize",
	"heretofore",
	"aforementioned",
	"in order to",
	"going forward",
	"best practices",
	"actionable",
	"multimodal",
	"stakeholder",
}

// RequiredFields maps a slide type to the fields it cannot be shown without.
var RequiredFields = map[string][]string{
	"title":           {"title", "presenter"},
	"hpi":             {"chiefComplaint", "history"},
	"case-history":    {"chiefComplaint", "history"},
	"assessment":      {"assessment"},
	"plan":            {"plan"},
	"assessment-plan": {"assessment", "plan"},
	"medications":     {"medications"},
	"labs":            {"labs"},
	"mcq":             {"question", "options", "correct"},
	"quiz":            {"question", "options", "correct"},
	"teaching-points": {"points"},
	"take-home":       {"message1"},
	"two-column":      {"leftContent", "rightContent"},
	"statistics":      {"stats"},
	"table":           {"table"},
	"image":           {"image"},
	"quote":           {"quote"},
	"pico":            {"population", "intervention", "comparison", "outcome"},
	"references":      {"references"},
	"toc":             {"items"},
}

// SlideTiming is the expected speaking time per slide type, in seconds.
var SlideTiming = map[string]int{
	"title":                30,
	"toc":                  30,
	"section-header":       15,
	"content":              60,
	"bullets":              60,
	"hpi":                  120,
	"case-history":         120,
	"physical-exam":        90,
	"labs":                 90,
	"medications":          90,
	"imaging":              60,
	"image":                45,
	"assessment":           90,
	"plan":                 90,
	"assessment-plan":      120,
	"differential":         120,
	"mcq":                  90,
	"quiz":                 90,
	"two-column":           75,
	"teaching-points":      90,
	"key-points":           60,
	"take-home":            60,
	"statistics":           60,
	"table":                90,
	"quote":                30,
	"pico":                 120,
	"conclusion":           60,
	"references":           30,
	"references-formatted": 30,
	"questions":            120,
	"default":              60,
}

// PassiveVoice matches an auxiliary followed by a past participle.
var PassiveVoice = regexp.MustCompile(`(?i)\b(?:is|are|was|were|be|been|being)\s+(?:\w+ly\s+)?\w+(?:ed|en)\b`)
