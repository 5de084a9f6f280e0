// Package catalog defines the fixed set of risk factors used to assess AV
// production opportunities. It is the single source of truth for factor
// weights and scale semantics; no other package hardcodes them.
package catalog

// Band is the qualitative risk band attached to one scale level.
type Band string

const (
	BandLow        Band = "Low"
	BandLowMedium  Band = "Low-Med"
	BandMedium     Band = "Medium"
	BandMediumHigh Band = "Med-High"
	BandHigh       Band = "High"
)

// ScaleLevel is one selectable level on a factor's 1..5 scale.
type ScaleLevel struct {
	Value int    `json:"value"`
	Label string `json:"label"`
	Band  Band   `json:"band"`
}

// Factor describes a single risk factor: a stable key, a strictly increasing
// scale of discrete levels, and a positive weight.
type Factor struct {
	Key         string       `json:"key"`
	Label       string       `json:"label"`
	Description string       `json:"description"`
	Scale       []ScaleLevel `json:"scale"`
	Weight      float64      `json:"weight"`
}

// CustomField returns the Current RMS custom-field key the factor's selected
// value is stored under.
func (f Factor) CustomField() string {
	return "risk_" + f.Key
}

// InScale reports whether v is a declared level of the factor's scale.
func (f Factor) InScale(v int) bool {
	for _, l := range f.Scale {
		if l.Value == v {
			return true
		}
	}
	return false
}

// Midpoint returns the middle scale level's value, used as the default
// selection before a user has scored the factor.
func (f Factor) Midpoint() int {
	return f.Scale[len(f.Scale)/2].Value
}

func scale(labels [5]string) []ScaleLevel {
	bands := [5]Band{BandLow, BandLowMedium, BandMedium, BandMediumHigh, BandHigh}
	levels := make([]ScaleLevel, 5)
	for i := range levels {
		levels[i] = ScaleLevel{Value: i + 1, Label: labels[i], Band: bands[i]}
	}
	return levels
}

var factors = []Factor{
	{
		Key:         "project_novelty",
		Label:       "Project Type Familiarity",
		Description: "How familiar is the team with this type of production?",
		Scale: scale([5]string{
			"Routine/Repeated", "Similar to past", "Some new elements",
			"Significantly novel", "Entirely new territory",
		}),
		Weight: 1.0,
	},
	{
		Key:         "technical_complexity",
		Label:       "Technical Complexity",
		Description: "System integration, equipment sophistication, setup complexity",
		Scale: scale([5]string{
			"Dry-hire", "Low complexity", "Multiple departments",
			"Highly complex", "Bleeding edge/Experimental",
		}),
		Weight: 1.5,
	},
	{
		Key:         "resource_utilization",
		Label:       "Resource Utilization",
		Description: "Percentage of available equipment/crew committed",
		Scale: scale([5]string{
			"0% utilization", "1-24% utilization", "25-49% utilization",
			"50-74% utilization", "75%+ utilization",
		}),
		Weight: 1.0,
	},
	{
		Key:         "client_sophistication",
		Label:       "Client Experience Level",
		Description: "Client familiarity with AV production processes",
		Scale: scale([5]string{
			"Highly experienced", "Experienced", "Moderate experience",
			"Limited experience", "First-time client",
		}),
		Weight: 0.75,
	},
	{
		Key:         "budget_size",
		Label:       "Budget Scale",
		Description: "Project budget relative to typical projects",
		Scale: scale([5]string{
			"<$5k", "$5k-$10k", "$10k-$40k", "$40k-$100k", "$100k+",
		}),
		Weight: 1.25,
	},
	{
		Key:         "timeframe_pressure",
		Label:       "Timeline Pressure",
		Description: "Prep time available vs. required",
		Scale: scale([5]string{
			"Ample time (>2x needed)", "Comfortable (1.5x needed)",
			"Standard timeline", "Tight timeline", "Rush/Emergency",
		}),
		Weight: 1.25,
	},
	{
		Key:         "team_experience",
		Label:       "Team Capability",
		Description: "Assigned team experience with similar projects",
		Scale: scale([5]string{
			"Expert team", "Experienced team", "Competent team",
			"Learning team", "Inexperienced team",
		}),
		Weight: 1.5,
	},
	{
		Key:         "subhire_availability",
		Label:       "Sub-hire Availability",
		Description: "Access to external equipment/crew if needed",
		Scale: scale([5]string{
			"Highly available", "Good sub-hire options", "Limited sub-hire options",
			"Interstate sub-hire only", "No sub-hire available",
		}),
		Weight: 0.75,
	},
}

// Factors returns the ordered factor list. The slice and its contents are
// stable for the process lifetime; callers must not mutate it.
func Factors() []Factor {
	return factors
}

// ByKey looks up a factor by its stable key.
func ByKey(key string) (Factor, bool) {
	for _, f := range factors {
		if f.Key == key {
			return f, true
		}
	}
	return Factor{}, false
}

// TotalWeight returns the sum of all factor weights.
func TotalWeight() float64 {
	var sum float64
	for _, f := range factors {
		sum += f.Weight
	}
	return sum
}

// DefaultSelection returns the midpoint selection for every factor.
func DefaultSelection() map[string]int {
	sel := make(map[string]int, len(factors))
	for _, f := range factors {
		sel[f.Key] = f.Midpoint()
	}
	return sel
}
