package service

import (
	"strings"

	"github.com/presentation-quality-server/internal/domain"
	"github.com/presentation-quality-server/internal/extract"
)

// Deck is the read-only view a rule evaluates. Extracted text is computed
// once per slide on first use; the slides themselves are never modified.
type Deck struct {
	Slides           []domain.Slide
	PresentationType string

	plain     []string
	markup    []string
	lower     []string
	structure []*extract.Structure
	whole     string
	ready     bool
}

// NewDeck wraps a slide list for rule evaluation.
func NewDeck(slides []domain.Slide, presentationType string) *Deck {
	return &Deck{Slides: slides, PresentationType: presentationType}
}

func (d *Deck) prepare() {
	if d.ready {
		return
	}
	d.plain = make([]string, len(d.Slides))
	d.markup = make([]string, len(d.Slides))
	d.lower = make([]string, len(d.Slides))
	d.structure = make([]*extract.Structure, len(d.Slides))
	for i, s := range d.Slides {
		d.plain[i] = extract.PlainText(s)
		d.markup[i] = extract.MarkupText(s)
		d.lower[i] = strings.ToLower(d.plain[i])
	}
	d.whole = strings.Join(d.lower, " ")
	d.ready = true
}

// Len is the number of slides.
func (d *Deck) Len() int {
	return len(d.Slides)
}

// Plain returns the plain text of slide i.
func (d *Deck) Plain(i int) string {
	d.prepare()
	return d.plain[i]
}

// Markup returns the markup text of slide i.
func (d *Deck) Markup(i int) string {
	d.prepare()
	return d.markup[i]
}

// Lower returns the lowercased plain text of slide i.
func (d *Deck) Lower(i int) string {
	d.prepare()
	return d.lower[i]
}

// Text returns the trimmed plain text of slide i.
func (d *Deck) Text(i int) string {
	return strings.TrimSpace(d.Plain(i))
}

// Structure returns the markup structure counts of slide i.
func (d *Deck) Structure(i int) extract.Structure {
	d.prepare()
	if d.structure[i] == nil {
		s := extract.AnalyzeMarkup(d.markup[i])
		d.structure[i] = &s
	}
	return *d.structure[i]
}

// AllLower is the lowercased plain text of the whole deck.
func (d *Deck) AllLower() string {
	d.prepare()
	return d.whole
}

// TypeSet returns the distinct slide types present.
func (d *Deck) TypeSet() map[string]bool {
	set := make(map[string]bool, len(d.Slides))
	for _, s := range d.Slides {
		set[s.Type] = true
	}
	return set
}
