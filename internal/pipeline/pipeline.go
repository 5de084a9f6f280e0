// Package pipeline applies the dashboard's filters to an opportunity
// collection and partitions the survivors into risk-tier buckets with value
// aggregates. Everything here is a pure function of (collection, filters);
// views are recomputed rather than incrementally mutated so they can never
// drift from the underlying data.
package pipeline

import (
	"github.com/rotisserie/eris"

	"github.com/prostaff-av/riskdash/internal/daterange"
	"github.com/prostaff-av/riskdash/internal/model"
	"github.com/prostaff-av/riskdash/internal/scoring"
)

// ReviewFilter selects opportunities by their canonicalized reviewed flag.
type ReviewFilter string

const (
	ReviewAll         ReviewFilter = "all"
	ReviewReviewed    ReviewFilter = "reviewed"
	ReviewNotReviewed ReviewFilter = "not_reviewed"
)

// ParseReviewFilter validates a review filter value, defaulting empty to all.
func ParseReviewFilter(s string) (ReviewFilter, error) {
	switch ReviewFilter(s) {
	case "", ReviewAll:
		return ReviewAll, nil
	case ReviewReviewed, ReviewNotReviewed:
		return ReviewFilter(s), nil
	default:
		return "", eris.Errorf("pipeline: unknown review filter %q", s)
	}
}

// MitigationFilter selects opportunities by mitigation-plan progress.
// Incomplete matches both none and partial.
type MitigationFilter string

const (
	MitigationAll        MitigationFilter = "all"
	MitigationNone       MitigationFilter = "none"
	MitigationPartial    MitigationFilter = "partial"
	MitigationComplete   MitigationFilter = "complete"
	MitigationIncomplete MitigationFilter = "incomplete"
)

// ParseMitigationFilter validates a mitigation filter value, defaulting
// empty to all.
func ParseMitigationFilter(s string) (MitigationFilter, error) {
	switch MitigationFilter(s) {
	case "", MitigationAll:
		return MitigationAll, nil
	case MitigationNone, MitigationPartial, MitigationComplete, MitigationIncomplete:
		return MitigationFilter(s), nil
	default:
		return "", eris.Errorf("pipeline: unknown mitigation filter %q", s)
	}
}

// Filters holds one full filter selection for the pipeline.
type Filters struct {
	Window            daterange.Window
	Review            ReviewFilter
	Mitigation        MitigationFilter
	NeedsReassessment bool
}

// Bucket is one risk tier's share of the filtered collection.
type Bucket struct {
	Tier          scoring.Tier        `json:"tier"`
	Opportunities []model.Opportunity `json:"opportunities"`
	Count         int                 `json:"count"`
	TotalCharge   float64             `json:"total_charge"`
}

// Result is the tiered, aggregated view of a filtered collection. Buckets
// appear in fixed order, highest risk first, and form a stable partition:
// every surviving opportunity lands in exactly one bucket.
type Result struct {
	Buckets     []Bucket `json:"buckets"`
	TotalCount  int      `json:"total_count"`
	TotalCharge float64  `json:"total_charge"`
}

// Bucket returns the bucket for a tier.
func (r Result) Bucket(t scoring.Tier) Bucket {
	for _, b := range r.Buckets {
		if b.Tier == t {
			return b
		}
	}
	return Bucket{Tier: t}
}

// Apply runs the filter stages in order: date window, tier derivation,
// review status, mitigation status, needs-reassessment. The tier is always
// re-derived from the risk score; the stored risk_level label can go stale
// relative to the score and is never trusted.
func Apply(opps []model.Opportunity, f Filters) Result {
	if f.Review == "" {
		f.Review = ReviewAll
	}
	if f.Mitigation == "" {
		f.Mitigation = MitigationAll
	}

	res := Result{Buckets: make([]Bucket, 0, 5)}
	for _, tier := range scoring.Tiers() {
		res.Buckets = append(res.Buckets, Bucket{Tier: tier})
	}
	byTier := make(map[scoring.Tier]*Bucket, len(res.Buckets))
	for i := range res.Buckets {
		byTier[res.Buckets[i].Tier] = &res.Buckets[i]
	}

	for _, o := range opps {
		// Records with no start instant cannot be placed in any window.
		if o.StartsAt.IsZero() || !f.Window.Contains(o.StartsAt) {
			continue
		}
		if !matchReview(o, f.Review) {
			continue
		}
		if !matchMitigation(o, f.Mitigation) {
			continue
		}
		if f.NeedsReassessment && !o.NeedsReassessment() {
			continue
		}

		b := byTier[scoring.TierForScore(o.Risk.Score)]
		b.Opportunities = append(b.Opportunities, o)
		b.Count++
		b.TotalCharge += o.Charge
		res.TotalCount++
		res.TotalCharge += o.Charge
	}

	return res
}

func matchReview(o model.Opportunity, f ReviewFilter) bool {
	switch f {
	case ReviewReviewed:
		return o.Risk.Reviewed
	case ReviewNotReviewed:
		return !o.Risk.Reviewed
	default:
		return true
	}
}

func matchMitigation(o model.Opportunity, f MitigationFilter) bool {
	switch f {
	case MitigationNone:
		return o.Risk.Mitigation == model.MitigationNone
	case MitigationPartial:
		return o.Risk.Mitigation == model.MitigationPartial
	case MitigationComplete:
		return o.Risk.Mitigation == model.MitigationComplete
	case MitigationIncomplete:
		return o.Risk.Mitigation != model.MitigationComplete
	default:
		return true
	}
}
