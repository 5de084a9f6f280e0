package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prostaff-av/riskdash/internal/model"
	"github.com/prostaff-av/riskdash/pkg/currentrms"
)

func TestCoerceBool_ReviewedFlagTable(t *testing.T) {
	truthy := []any{"Yes", true, "true", 1, "1", float64(1), int64(1)}
	for _, v := range truthy {
		assert.True(t, coerceBool(v), "%#v should canonicalize to true", v)
	}

	falsy := []any{"", false, nil, 0, "0", "No", "yes", float64(0), "maybe", 2}
	for _, v := range falsy {
		assert.False(t, coerceBool(v), "%#v should canonicalize to false", v)
	}
}

func TestCoerceFloat(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{nil, 0},
		{float64(3.5), 3.5},
		{int(4), 4},
		{"2.75", 2.75},
		{" 1200.50 ", 1200.5},
		{"", 0},
		{"not a number", 0},
		{true, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, coerceFloat(tt.in), 1e-9, "%#v", tt.in)
	}
}

func TestCoerceTime(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want time.Time
	}{
		{"rfc3339", "2026-03-15T10:30:00Z", time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)},
		{"date only", "2026-03-15", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"empty", "", time.Time{}},
		{"nil", nil, time.Time{}},
		{"garbage", "soon", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(coerceTime(tt.in)))
		})
	}
}

func TestNormalize_Defaults(t *testing.T) {
	o := Normalize(currentrms.RawOpportunity{ID: float64(7)})

	assert.Equal(t, int64(7), o.ID)
	assert.Equal(t, DefaultSubject, o.Subject)
	assert.Equal(t, DefaultOwner, o.Owner)
	assert.Zero(t, o.Charge)
	assert.Zero(t, o.EstimatedCost)
	assert.True(t, o.StartsAt.IsZero())
	assert.Zero(t, o.Risk.Score)
	assert.False(t, o.Risk.Reviewed)
	assert.Equal(t, model.MitigationNone, o.Risk.Mitigation)
}

func TestNormalize_HeterogeneousEncodings(t *testing.T) {
	raw := currentrms.RawOpportunity{
		ID:          "42",
		Subject:     "  Conference AV  ",
		StartsAt:    "2026-05-01T09:00:00Z",
		ChargeTotal: "12500.75",
		CostTotal:   float64(8000),
		Owner:       &currentrms.RawParty{Name: "Dana Reyes"},
		UpdatedAt:   "2026-04-20T12:00:00Z",
		CustomFields: map[string]any{
			"risk_score":              "3.25",
			"risk_reviewed":           "1",
			"risk_mitigation_plan":    "2",
			"risk_mitigation_notes":   "Backup rig booked",
			"risk_last_updated":       "2026-04-18T08:00:00Z",
			"risk_project_novelty":    "4",
			"risk_technical_complexity": float64(3),
		},
	}

	o := Normalize(raw)

	assert.Equal(t, int64(42), o.ID)
	assert.Equal(t, "Conference AV", o.Subject)
	assert.InDelta(t, 12500.75, o.Charge, 1e-9)
	assert.InDelta(t, 8000, o.EstimatedCost, 1e-9)
	assert.Equal(t, "Dana Reyes", o.Owner)
	assert.InDelta(t, 3.25, o.Risk.Score, 1e-9)
	assert.True(t, o.Risk.Reviewed)
	assert.Equal(t, model.MitigationComplete, o.Risk.Mitigation)
	assert.Equal(t, "Backup rig booked", o.Risk.MitigationNotes)
	assert.Equal(t, 4, o.Risk.Selection["project_novelty"])
	assert.Equal(t, 3, o.Risk.Selection["technical_complexity"])
}

func TestNormalize_ChargeAndOwnerFallbacks(t *testing.T) {
	o := Normalize(currentrms.RawOpportunity{
		ID:               float64(1),
		Charge:           "900",
		OpportunityOwner: &currentrms.RawParty{Name: "Sam Okafor"},
	})
	assert.InDelta(t, 900, o.Charge, 1e-9)
	assert.Equal(t, "Sam Okafor", o.Owner)

	// charge_total wins when both are present.
	o = Normalize(currentrms.RawOpportunity{
		ID:          float64(2),
		ChargeTotal: float64(1500),
		Charge:      "900",
		Owner:       &currentrms.RawParty{Name: "Dana"},
	})
	assert.InDelta(t, 1500, o.Charge, 1e-9)
	assert.Equal(t, "Dana", o.Owner)
}

func TestNormalize_OutOfRangeMitigationIgnored(t *testing.T) {
	o := Normalize(currentrms.RawOpportunity{
		ID:           float64(1),
		CustomFields: map[string]any{"risk_mitigation_plan": "7"},
	})
	assert.Equal(t, model.MitigationNone, o.Risk.Mitigation)
}

// rawFrom renders a canonical opportunity back into the wire shape using
// canonical encodings only.
func rawFrom(o model.Opportunity) currentrms.RawOpportunity {
	cf := map[string]any{
		"risk_score":            o.Risk.Score,
		"risk_mitigation_plan":  float64(o.Risk.Mitigation),
		"risk_mitigation_notes": o.Risk.MitigationNotes,
	}
	if o.Risk.Reviewed {
		cf["risk_reviewed"] = "Yes"
	} else {
		cf["risk_reviewed"] = ""
	}
	if !o.Risk.LastUpdated.IsZero() {
		cf["risk_last_updated"] = o.Risk.LastUpdated.Format(time.RFC3339)
	}
	for k, v := range o.Risk.Selection {
		cf["risk_"+k] = float64(v)
	}

	raw := currentrms.RawOpportunity{
		ID:           float64(o.ID),
		Subject:      o.Subject,
		ChargeTotal:  o.Charge,
		CostTotal:    o.EstimatedCost,
		Owner:        &currentrms.RawParty{Name: o.Owner},
		CustomFields: cf,
	}
	if o.Organisation != "" {
		raw.Organisation = &currentrms.RawParty{Name: o.Organisation}
	}
	if !o.StartsAt.IsZero() {
		raw.StartsAt = o.StartsAt.Format(time.RFC3339)
	}
	if !o.UpdatedAt.IsZero() {
		raw.UpdatedAt = o.UpdatedAt.Format(time.RFC3339)
	}
	return raw
}

func TestNormalize_Idempotent(t *testing.T) {
	raw := currentrms.RawOpportunity{
		ID:           "42",
		Subject:      "Awards night",
		StartsAt:     "2026-06-10T18:00:00Z",
		ChargeTotal:  "42000",
		CostTotal:    "29000",
		Owner:        &currentrms.RawParty{Name: "Dana Reyes"},
		Organisation: &currentrms.RawParty{Name: "Northside Events"},
		UpdatedAt:    "2026-05-30T11:00:00Z",
		CustomFields: map[string]any{
			"risk_score":           "2.75",
			"risk_reviewed":        true,
			"risk_mitigation_plan": 1,
			"risk_last_updated":    "2026-05-29T09:00:00Z",
			"risk_budget_size":     "4",
		},
	}

	once := Normalize(raw)
	twice := Normalize(rawFrom(once))
	require.Equal(t, once, twice)
}
