// Package normalize canonicalizes raw Current RMS opportunity records. The
// upstream custom-field store is schemaless text and historically
// inconsistent, so every field goes through a dedicated total coercion
// function instead of ad hoc equality checks at call sites.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/prostaff-av/riskdash/internal/catalog"
	"github.com/prostaff-av/riskdash/internal/model"
	"github.com/prostaff-av/riskdash/pkg/currentrms"
)

const (
	// DefaultSubject stands in for records with no display subject.
	DefaultSubject = "Untitled opportunity"
	// DefaultOwner stands in for records with no owner name.
	DefaultOwner = "Unassigned"
)

// Normalize maps a raw record into the canonical opportunity shape. It is
// idempotent: feeding back an already-normalized record is a no-op.
func Normalize(raw currentrms.RawOpportunity) model.Opportunity {
	o := model.Opportunity{
		ID:            coerceInt64(raw.ID),
		Subject:       strings.TrimSpace(coerceString(raw.Subject)),
		StartsAt:      coerceTime(raw.StartsAt),
		EstimatedCost: coerceFloat(raw.CostTotal),
		UpdatedAt:     coerceTime(raw.UpdatedAt),
	}

	if o.Subject == "" {
		o.Subject = DefaultSubject
	}

	// charge_total is the current field name; older records carry charge.
	o.Charge = coerceFloat(raw.ChargeTotal)
	if raw.ChargeTotal == nil {
		o.Charge = coerceFloat(raw.Charge)
	}

	o.Owner = partyName(raw.Owner)
	if o.Owner == "" {
		o.Owner = partyName(raw.OpportunityOwner)
	}
	if o.Owner == "" {
		o.Owner = DefaultOwner
	}
	o.Organisation = partyName(raw.Organisation)

	o.Risk = normalizeRisk(raw.CustomFields)
	return o
}

func normalizeRisk(cf map[string]any) model.RiskRecord {
	r := model.RiskRecord{
		Score:           coerceFloat(cf["risk_score"]),
		Reviewed:        coerceBool(cf["risk_reviewed"]),
		MitigationNotes: coerceString(cf["risk_mitigation_notes"]),
		LastUpdated:     coerceTime(cf["risk_last_updated"]),
	}

	mitigation := int(coerceFloat(cf["risk_mitigation_plan"]))
	if mitigation >= int(model.MitigationNone) && mitigation <= int(model.MitigationComplete) {
		r.Mitigation = model.MitigationStatus(mitigation)
	}

	for _, f := range catalog.Factors() {
		v := int(coerceFloat(cf[f.CustomField()]))
		if v == 0 {
			continue
		}
		if r.Selection == nil {
			r.Selection = make(map[string]int, len(catalog.Factors()))
		}
		r.Selection[f.Key] = v
	}
	return r
}

func partyName(p *currentrms.RawParty) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.Name)
}

// coerceBool canonicalizes the reviewed flag. "Yes", true, "true", 1 and
// "1" mean true; anything else, including absent and empty, means false.
func coerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.TrimSpace(t)
		return s == "Yes" || s == "true" || s == "1"
	case float64:
		return t == 1
	case int:
		return t == 1
	case int64:
		return t == 1
	default:
		return false
	}
}

// coerceFloat accepts numbers and numeric strings; everything else is 0.
func coerceFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func coerceInt64(v any) int64 {
	return int64(coerceFloat(v))
}

// coerceString passes strings through and renders numbers without an
// exponent; nil and unknown shapes become "".
func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// coerceTime parses upstream timestamps, tolerating date-only strings.
// Unparsable or absent values become the zero time.
func coerceTime(v any) time.Time {
	s := strings.TrimSpace(coerceString(v))
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
