package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/presentation-quality-server/internal/domain"
)

// RuleScope says whether a rule looks at one slide at a time or at the deck.
type RuleScope string

const (
	SCOPE_SLIDE RuleScope = "slide"
	SCOPE_DECK  RuleScope = "deck"
)

// Rule is one entry of the catalog. Exactly one of slideCheck and deckCheck
// is set, matching Scope.
type Rule struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Group string    `json:"group"`
	Scope RuleScope `json:"scope"`

	slideCheck func(d *Deck, i int, acc *Accumulator)
	deckCheck  func(d *Deck, acc *Accumulator)
}

// Evaluate runs the rule over the whole deck into a fresh accumulator.
func (r *Rule) Evaluate(d *Deck) *Accumulator {
	acc := NewAccumulator(r.ID)
	if r.Scope == SCOPE_SLIDE {
		for i := range d.Slides {
			r.slideCheck(d, i, acc)
		}
		return acc
	}
	r.deckCheck(d, acc)
	return acc
}

// EvaluateSlide runs a slide-scoped rule on slide i only.
func (r *Rule) EvaluateSlide(d *Deck, i int) *Accumulator {
	acc := NewAccumulator(r.ID)
	if r.Scope == SCOPE_SLIDE {
		r.slideCheck(d, i, acc)
	}
	return acc
}

// RuleEngine holds the ordered rule catalog. Catalog order is output order.
type RuleEngine struct {
	logger *logrus.Logger
	rules  []*Rule
	index  map[string]*Rule
}

// NewRuleEngine creates a rule engine with the full catalog registered.
func NewRuleEngine(logger *logrus.Logger) *RuleEngine {
	engine := &RuleEngine{
		logger: logger,
		index:  make(map[string]*Rule),
	}

	engine.initializeRules()

	return engine
}

// initializeRules registers the catalog in evaluation order.
func (e *RuleEngine) initializeRules() {
	e.addDeckRule("slide-count", "Presentation length", "structure", checkSlideCount)
	e.addSlideRule("empty-slide", "Empty slides", "emptiness", checkEmptySlide)
	e.addDeckRule("slide-order", "Title and wrap-up placement", "ordering", checkSlideOrder)
	e.addSlideRule("content-density", "Text density", "density", checkDensity)
	e.addSlideRule("required-fields", "Required fields", "required-fields", checkRequiredFields)
	e.addSlideRule("quiz-integrity", "Quiz answer integrity", "required-fields", checkQuizIntegrity)
	e.addSlideRule("placeholder-text", "Placeholder text", "placeholders", checkPlaceholders)
	e.addDeckRule("domain-focus", "Geriatrics focus", "domain-content", checkDomainFocus)
	e.addDeckRule("abbreviations", "Undefined abbreviations", "abbreviations", checkAbbreviations)
	e.addDeckRule("duplicate-content", "Duplicate content", "duplicates", checkDuplicates)
	e.addDeckRule("slide-variety", "Slide variety", "variety", checkVariety)
	e.addDeckRule("medication-safety", "Medication safety", "medication-safety", checkMedicationSafety)
	e.addSlideRule("lab-plausibility", "Lab value plausibility", "lab-plausibility", checkLabPlausibility)
	e.addSlideRule("readability", "Readability", "readability", checkReadability)
	e.addSlideRule("accessibility", "Accessibility", "accessibility", checkAccessibility)
	e.addDeckRule("consistency", "Formatting consistency", "consistency", checkConsistency)
	e.addDeckRule("recommended-sequence", "Recommended slide sequence", "structure", checkRecommendedSequence)
}

func (e *RuleEngine) addSlideRule(id, name, group string, check func(d *Deck, i int, acc *Accumulator)) {
	e.register(&Rule{ID: id, Name: name, Group: group, Scope: SCOPE_SLIDE, slideCheck: check})
}

func (e *RuleEngine) addDeckRule(id, name, group string, check func(d *Deck, acc *Accumulator)) {
	e.register(&Rule{ID: id, Name: name, Group: group, Scope: SCOPE_DECK, deckCheck: check})
}

func (e *RuleEngine) register(rule *Rule) {
	if _, exists := e.index[rule.ID]; exists {
		panic(fmt.Sprintf("duplicate rule id %q", rule.ID))
	}
	e.rules = append(e.rules, rule)
	e.index[rule.ID] = rule
}

// Rules returns the catalog in evaluation order.
func (e *RuleEngine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	for i, r := range e.rules {
		out[i] = *r
	}
	return out
}

// EvaluateAll runs every rule in catalog order and merges the findings.
func (e *RuleEngine) EvaluateAll(d *Deck) *Accumulator {
	all := NewAccumulator("")
	for _, rule := range e.rules {
		acc := rule.Evaluate(d)
		e.logger.WithFields(logrus.Fields{
			"rule":     rule.ID,
			"findings": acc.Len(),
		}).Debug("Evaluated rule")
		all.Merge(acc)
	}
	return all
}

// EvaluateRule runs a single rule by id.
func (e *RuleEngine) EvaluateRule(ruleID string, d *Deck) (*Accumulator, error) {
	rule, exists := e.index[ruleID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownRule, ruleID)
	}

	e.logger.WithField("rule", ruleID).Debug("Evaluating single rule")
	return rule.Evaluate(d), nil
}

// EvaluateSlide runs every slide-scoped rule against slide i. Findings keep
// their deck index.
func (e *RuleEngine) EvaluateSlide(d *Deck, i int) (*Accumulator, error) {
	if i < 0 || i >= d.Len() {
		return nil, fmt.Errorf("%w: %d (deck has %d slides)", domain.ErrSlideIndexOutOfRange, i, d.Len())
	}

	all := NewAccumulator("")
	for _, rule := range e.rules {
		if rule.Scope != SCOPE_SLIDE {
			continue
		}
		all.Merge(rule.EvaluateSlide(d, i))
	}
	return all, nil
}
