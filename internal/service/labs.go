package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/presentation-quality-server/internal/domain"
	"github.com/presentation-quality-server/internal/knowledge"
)

// LabStatus classifies a parsed lab value against its range.
type LabStatus string

const (
	LAB_NORMAL      LabStatus = "normal"
	LAB_LOW         LabStatus = "low"
	LAB_HIGH        LabStatus = "high"
	LAB_IMPLAUSIBLE LabStatus = "implausible"
)

// LabValue is one value parsed from text.
type LabValue struct {
	Lab         string    `json:"lab"`
	Value       float64   `json:"value"`
	Unit        string    `json:"unit"`
	NormalRange string    `json:"normalRange"`
	Status      LabStatus `json:"status"`
}

// LabReport is the standalone lab plausibility view of a text.
type LabReport struct {
	Values  []LabValue `json:"values"`
	Unusual []LabValue `json:"unusual"`
}

// ClassifyLab places a value against the lab's normal range. Values outside
// [0.1 x min, 10 x max] are implausible, which usually means a typo or unit slip.
func ClassifyLab(r knowledge.LabRange, value float64) LabStatus {
	switch {
	case value < r.PlausibleLow() || value > r.PlausibleHigh():
		return LAB_IMPLAUSIBLE
	case value < r.Min:
		return LAB_LOW
	case value > r.Max:
		return LAB_HIGH
	default:
		return LAB_NORMAL
	}
}

func formatRange(r knowledge.LabRange) string {
	rng := strconv.FormatFloat(r.Min, 'f', -1, 64) + "-" + strconv.FormatFloat(r.Max, 'f', -1, 64)
	if r.Unit != "" {
		rng += " " + r.Unit
	}
	return rng
}

// CheckLabValues parses every recognised lab value in text, in table order
// and then in order of appearance.
func CheckLabValues(text string) *LabReport {
	report := &LabReport{Values: []LabValue{}, Unusual: []LabValue{}}
	for _, r := range knowledge.LabRanges {
		for _, m := range r.Pattern.FindAllStringSubmatch(text, -1) {
			value, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			lv := LabValue{
				Lab:         r.Name,
				Value:       value,
				Unit:        r.Unit,
				NormalRange: formatRange(r),
				Status:      ClassifyLab(r, value),
			}
			report.Values = append(report.Values, lv)
			if lv.Status == LAB_IMPLAUSIBLE {
				report.Unusual = append(report.Unusual, lv)
			}
		}
	}
	return report
}

func checkLabPlausibility(d *Deck, i int, acc *Accumulator) {
	for _, lv := range CheckLabValues(d.Plain(i)).Unusual {
		value := strings.TrimSpace(strconv.FormatFloat(lv.Value, 'f', -1, 64) + " " + lv.Unit)
		acc.Emit(domain.INFO, "Unusual lab value",
			fmt.Sprintf("Slide %d: %s %s is far outside the typical range (%s). Please verify.", i+1, lv.Lab, value, lv.NormalRange),
			domain.SlideRef(i), domain.Action(domain.ActionSelectSlide))
	}
}
