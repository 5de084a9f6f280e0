// Package scoring turns a full set of factor selections into a weighted risk
// score, a risk tier, and an approval-routing decision.
package scoring

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/prostaff-av/riskdash/internal/catalog"
)

// Tier is the risk tier derived from a score. UNSCORED is reserved for
// opportunities with no recorded score; Compute never returns it.
type Tier string

const (
	TierLow      Tier = "LOW"
	TierMedium   Tier = "MEDIUM"
	TierHigh     Tier = "HIGH"
	TierCritical Tier = "CRITICAL"
	TierUnscored Tier = "UNSCORED"
)

// Approval authorities, escalating with tier.
const (
	ApprovalProjectManager     = "Project Manager"
	ApprovalSeniorManager      = "Senior Manager"
	ApprovalOperationsDirector = "Operations Director"
	ApprovalExecutive          = "Executive Approval Required"
)

// ErrInvalidSelection indicates a selection missing a catalog factor or
// carrying a value outside the factor's declared scale. It marks a
// programming error: callers must abort rather than compute a partial score.
var ErrInvalidSelection = eris.New("scoring: invalid selection")

// Selection maps factor keys to the chosen scale value.
type Selection map[string]int

// Assessment is the result of scoring one selection. It has no hidden state;
// identical selections always produce identical assessments.
type Assessment struct {
	Score    float64 `json:"score"`
	Tier     Tier    `json:"tier"`
	Approval string  `json:"approval"`
}

// Compute calculates the weighted mean of the selection over the catalog
// weights, keeping the score on the human-readable 1-5 axis.
func Compute(sel Selection) (Assessment, error) {
	var weighted float64
	for _, f := range catalog.Factors() {
		v, ok := sel[f.Key]
		if !ok {
			return Assessment{}, eris.Wrapf(ErrInvalidSelection, "missing factor %q", f.Key)
		}
		if !f.InScale(v) {
			return Assessment{}, eris.Wrapf(ErrInvalidSelection, "factor %q value %d outside scale", f.Key, v)
		}
		weighted += float64(v) * f.Weight
	}

	score := round2(weighted / catalog.TotalWeight())
	tier := TierForScore(score)
	return Assessment{Score: score, Tier: tier, Approval: ApprovalForTier(tier)}, nil
}

// TierForScore maps a stored or computed score to its tier. Band upper
// bounds are closed: exactly 2.0 is LOW, exactly 4.0 is HIGH. A score of 0
// or less means the opportunity was never assessed.
func TierForScore(score float64) Tier {
	switch {
	case score <= 0:
		return TierUnscored
	case score <= 2.0:
		return TierLow
	case score <= 3.0:
		return TierMedium
	case score <= 4.0:
		return TierHigh
	default:
		return TierCritical
	}
}

// ApprovalForTier returns the approval authority for a tier. It is derived
// from the tier itself so the routing can never disagree with the tier
// thresholds.
func ApprovalForTier(t Tier) string {
	switch t {
	case TierLow:
		return ApprovalProjectManager
	case TierMedium:
		return ApprovalSeniorManager
	case TierHigh:
		return ApprovalOperationsDirector
	case TierCritical:
		return ApprovalExecutive
	default:
		return ""
	}
}

// Tiers returns the bucket order used by the dashboard, highest risk first.
func Tiers() []Tier {
	return []Tier{TierCritical, TierHigh, TierMedium, TierLow, TierUnscored}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
