package domain

// ScoringPolicy centralises the severity weights, caps and slide-type bonuses.
// Every caller that scores a deck goes through one policy value so the server
// and embedded surfaces cannot drift apart.
type ScoringPolicy struct {
	Base          int          `mapstructure:"base" json:"base"`
	ErrorWeight   int          `mapstructure:"error_weight" json:"errorWeight"`
	ErrorCap      int          `mapstructure:"error_cap" json:"errorCap"`
	WarningWeight int          `mapstructure:"warning_weight" json:"warningWeight"`
	WarningCap    int          `mapstructure:"warning_cap" json:"warningCap"`
	InfoWeight    int          `mapstructure:"info_weight" json:"infoWeight"`
	InfoCap       int          `mapstructure:"info_cap" json:"infoCap"`
	Bonuses       []ScoreBonus `mapstructure:"bonuses" json:"bonuses"`
}

// ScoreBonus is awarded once when any of SlideTypes appears in the deck.
type ScoreBonus struct {
	SlideTypes []string `mapstructure:"slide_types" json:"slideTypes"`
	Points     int      `mapstructure:"points" json:"points"`
}

// DefaultScoringPolicy returns the canonical weights: 10/5/2 per finding,
// capped at 40/30/20, with +5/+3/+2 slide-type bonuses.
func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		Base:          100,
		ErrorWeight:   10,
		ErrorCap:      40,
		WarningWeight: 5,
		WarningCap:    30,
		InfoWeight:    2,
		InfoCap:       20,
		Bonuses: []ScoreBonus{
			{SlideTypes: []string{"take-home", "teaching-points"}, Points: 5},
			{SlideTypes: []string{"references", "references-formatted"}, Points: 3},
			{SlideTypes: []string{"toc"}, Points: 2},
		},
	}
}

// Grade maps a 0..100 score to a letter.
func Grade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}
