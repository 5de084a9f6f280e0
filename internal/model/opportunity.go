// Package model defines the canonical in-memory shapes shared across the
// dashboard: opportunities read from Current RMS and their risk sub-records.
package model

import "time"

// MitigationStatus is the tri-state workflow marker tracking risk-response
// planning progress, stored upstream as 0/1/2.
type MitigationStatus int

const (
	MitigationNone     MitigationStatus = 0
	MitigationPartial  MitigationStatus = 1
	MitigationComplete MitigationStatus = 2
)

// String returns the lowercase name used by filters and reports.
func (m MitigationStatus) String() string {
	switch m {
	case MitigationPartial:
		return "partial"
	case MitigationComplete:
		return "complete"
	default:
		return "none"
	}
}

// RiskRecord holds the risk-workflow fields persisted in the opportunity's
// custom-field store. Score 0 means the opportunity has never been assessed.
type RiskRecord struct {
	Score           float64          `json:"score"`
	Selection       map[string]int   `json:"selection,omitempty"`
	Reviewed        bool             `json:"reviewed"`
	Mitigation      MitigationStatus `json:"mitigation"`
	MitigationNotes string           `json:"mitigation_notes,omitempty"`
	LastUpdated     time.Time        `json:"last_updated"`
}

// Opportunity is the canonical form of a Current RMS opportunity record.
// Opportunities are never created or deleted here; they are read from and
// written back to the external system.
type Opportunity struct {
	ID            int64      `json:"id"`
	Subject       string     `json:"subject"`
	StartsAt      time.Time  `json:"starts_at"`
	Charge        float64    `json:"charge"`
	EstimatedCost float64    `json:"estimated_cost"`
	Owner         string     `json:"owner"`
	Organisation  string     `json:"organisation"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Risk          RiskRecord `json:"risk"`
}

// NeedsReassessment reports whether the opportunity's external data changed
// after its risk score was last computed. An opportunity that has never been
// assessed always needs one.
func (o Opportunity) NeedsReassessment() bool {
	if o.Risk.LastUpdated.IsZero() {
		return true
	}
	return o.UpdatedAt.After(o.Risk.LastUpdated)
}
