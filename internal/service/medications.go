package service

import (
	"fmt"
	"strings"

	"github.com/presentation-quality-server/internal/domain"
	"github.com/presentation-quality-server/internal/knowledge"
)

const maxBeersExamples = 3

// Interaction is one drug pair found together in the text.
type Interaction struct {
	Drug        string `json:"drug"`
	Interactor  string `json:"interactor"`
	Description string `json:"description"`
}

// MonitoringAlert is a high-risk drug mentioned without monitoring language.
type MonitoringAlert struct {
	Drug           string `json:"drug"`
	Recommendation string `json:"recommendation"`
}

// MedicationReport is the standalone medication safety view of a text.
type MedicationReport struct {
	BeersMedications []knowledge.BeersEntry `json:"beersMedications"`
	Interactions     []Interaction          `json:"interactions"`
	MonitoringAlerts []MonitoringAlert      `json:"monitoringAlerts"`
}

// HasFindings reports whether anything was flagged.
func (r *MedicationReport) HasFindings() bool {
	return len(r.BeersMedications)+len(r.Interactions)+len(r.MonitoringAlerts) > 0
}

// CheckMedications scans free text against the Beers list, the interaction
// table and the high-risk drug list. Matching is case-insensitive substring.
func CheckMedications(text string) *MedicationReport {
	lower := strings.ToLower(text)
	return &MedicationReport{
		BeersMedications: findBeers(lower),
		Interactions:     findInteractions(lower),
		MonitoringAlerts: findMonitoringGaps(lower),
	}
}

func findBeers(lower string) []knowledge.BeersEntry {
	found := []knowledge.BeersEntry{}
	for _, entry := range knowledge.BeersCriteria {
		if strings.Contains(lower, entry.Drug) {
			found = append(found, entry)
		}
	}
	return found
}

func findInteractions(lower string) []Interaction {
	found := []Interaction{}
	for _, pair := range knowledge.DrugInteractions {
		if !strings.Contains(lower, pair.Drug) {
			continue
		}
		for _, other := range pair.Interactors {
			if strings.Contains(lower, other) {
				found = append(found, Interaction{Drug: pair.Drug, Interactor: other, Description: pair.Description})
			}
		}
	}
	return found
}

func hasMonitoringLanguage(lower string) bool {
	for _, term := range knowledge.MonitoringTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func findMonitoringGaps(lower string) []MonitoringAlert {
	found := []MonitoringAlert{}
	if hasMonitoringLanguage(lower) {
		return found
	}
	for _, drug := range knowledge.HighRiskDrugs {
		if strings.Contains(lower, drug.Drug) {
			found = append(found, MonitoringAlert{Drug: drug.Drug, Recommendation: drug.Recommendation})
		}
	}
	return found
}

// firstSlideWith returns the first slide whose text contains every term, or -1.
func firstSlideWith(d *Deck, terms ...string) int {
	for i := range d.Slides {
		lower := d.Lower(i)
		all := true
		for _, t := range terms {
			if !strings.Contains(lower, t) {
				all = false
				break
			}
		}
		if all {
			return i
		}
	}
	return -1
}

func slideRefOrNil(i int) *int {
	if i < 0 {
		return nil
	}
	return domain.SlideRef(i)
}

// checkMedicationSafety looks for Beers drugs and interactions across the
// whole deck, and for unmonitored high-risk drugs slide by slide.
func checkMedicationSafety(d *Deck, acc *Accumulator) {
	text := d.AllLower()

	if beers := findBeers(text); len(beers) > 0 {
		names := make([]string, 0, maxBeersExamples)
		for _, b := range beers {
			if len(names) == maxBeersExamples {
				break
			}
			names = append(names, b.Drug)
		}
		msg := fmt.Sprintf("Potentially inappropriate in older adults (Beers criteria): %s", strings.Join(names, ", "))
		if extra := len(beers) - len(names); extra > 0 {
			msg += fmt.Sprintf(" and %d more", extra)
		}
		acc.Emit(domain.INFO, "Beers criteria medications", msg+". Discuss risks and alternatives.",
			slideRefOrNil(firstSlideWith(d, beers[0].Drug)), nil)
	}

	for _, ix := range findInteractions(text) {
		acc.Emit(domain.WARNING, "Drug interaction",
			fmt.Sprintf("%s + %s: %s.", ix.Drug, ix.Interactor, ix.Description),
			slideRefOrNil(firstSlideWith(d, ix.Drug, ix.Interactor)), domain.Action(domain.ActionSelectSlide))
	}

	for i := range d.Slides {
		for _, alert := range findMonitoringGaps(d.Lower(i)) {
			acc.Emit(domain.INFO, "Monitoring not mentioned",
				fmt.Sprintf("Slide %d mentions %s. %s.", i+1, alert.Drug, alert.Recommendation),
				domain.SlideRef(i), domain.Action(domain.ActionSelectSlide))
		}
	}
}
