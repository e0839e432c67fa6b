package engine

// Measure is an activatable policy with a daily cost. While active it
// contributes to the daily expense total, dampens the interaction volume
// and drags on the happiness trend.
type Measure struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Active      bool    `json:"active"`
	DailyCost   int64   `json:"dailyCost"`
	ContactDamp float64 `json:"-"` // multiplier on daily interactions while active
	MoodPenalty float64 `json:"-"` // subtracted from happinessRate while active
}

// defaultMeasures returns the measure catalog keyed by short code.
func defaultMeasures() map[string]*Measure {
	list := []*Measure{
		{
			Code:        "sd",
			Name:        "Social Distancing",
			Description: "Public appeals to keep distance and avoid gatherings.",
			DailyCost:   2_000_000,
			ContactDamp: 0.85,
			MoodPenalty: 0.05,
		},
		{
			Code:        "mm",
			Name:        "Mask Mandate",
			Description: "Masks required in shops and public transport.",
			DailyCost:   4_000_000,
			ContactDamp: 0.80,
			MoodPenalty: 0.08,
		},
		{
			Code:        "cf",
			Name:        "Curfew",
			Description: "Streets cleared between dusk and dawn.",
			DailyCost:   9_000_000,
			ContactDamp: 0.60,
			MoodPenalty: 0.20,
		},
		{
			Code:        "ld",
			Name:        "Lockdown",
			Description: "Everything closed except essential services.",
			DailyCost:   25_000_000,
			ContactDamp: 0.35,
			MoodPenalty: 0.45,
		},
	}
	m := make(map[string]*Measure, len(list))
	for _, measure := range list {
		m[measure.Code] = measure
	}
	return m
}
