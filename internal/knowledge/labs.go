package knowledge

import "regexp"

// LabRange is the typical adult range for one lab test.
type LabRange struct {
	Name    string         `json:"name"`
	Unit    string         `json:"unit"`
	Min     float64        `json:"min"`
	Max     float64        `json:"max"`
	Pattern *regexp.Regexp `json:"-"`
}

// PlausibleLow is the lowest value not considered a likely typo (0.1 x min).
func (r LabRange) PlausibleLow() float64 {
	return r.Min * 0.1
}

// PlausibleHigh is the highest value not considered a likely typo (10 x max).
func (r LabRange) PlausibleHigh() float64 {
	return r.Max * 10
}

// labValue captures a number following a lab name, allowing ":" or "=" or "of".
const labValue = `\s*(?:[:=]|\bof\b|\bis\b)?\s*(\d+(?:\.\d+)?)`

// LabRanges are evaluated in order; the first capture group is the value.
var LabRanges = []LabRange{
	{Name: "sodium", Unit: "mmol/L", Min: 135, Max: 145, Pattern: regexp.MustCompile(`(?i)\b(?:sodium|na\+?)` + labValue)},
	{Name: "potassium", Unit: "mmol/L", Min: 3.5, Max: 5.0, Pattern: regexp.MustCompile(`(?i)\b(?:potassium|k\+?)` + labValue)},
	{Name: "creatinine", Unit: "mg/dL", Min: 0.6, Max: 1.2, Pattern: regexp.MustCompile(`(?i)\b(?:creatinine|cr)` + labValue)},
	{Name: "hemoglobin", Unit: "g/dL", Min: 12, Max: 17, Pattern: regexp.MustCompile(`(?i)\b(?:hemoglobin|haemoglobin|hgb|hb)` + labValue)},
	{Name: "glucose", Unit: "mg/dL", Min: 70, Max: 110, Pattern: regexp.MustCompile(`(?i)\b(?:glucose|bg)` + labValue)},
	{Name: "wbc", Unit: "x10^9/L", Min: 4, Max: 11, Pattern: regexp.MustCompile(`(?i)\b(?:wbc|white blood cells?)` + labValue)},
	{Name: "platelets", Unit: "x10^9/L", Min: 150, Max: 400, Pattern: regexp.MustCompile(`(?i)\b(?:platelets?|plt)` + labValue)},
	{Name: "inr", Unit: "", Min: 0.8, Max: 1.2, Pattern: regexp.MustCompile(`(?i)\binr` + labValue)},
	{Name: "tsh", Unit: "mIU/L", Min: 0.4, Max: 4.0, Pattern: regexp.MustCompile(`(?i)\btsh` + labValue)},
	{Name: "bun", Unit: "mg/dL", Min: 7, Max: 20, Pattern: regexp.MustCompile(`(?i)\bbun` + labValue)},
	{Name: "albumin", Unit: "g/dL", Min: 3.5, Max: 5.0, Pattern: regexp.MustCompile(`(?i)\balbumin` + labValue)},
	{Name: "calcium", Unit: "mg/dL", Min: 8.5, Max: 10.5, Pattern: regexp.MustCompile(`(?i)\b(?:calcium|ca)` + labValue)},
}

// LookupLab returns the range for a lab name, case-sensitive on the canonical name.
func LookupLab(name string) (LabRange, bool) {
	for _, r := range LabRanges {
		if r.Name == name {
			return r, true
		}
	}
	return LabRange{}, false
}
