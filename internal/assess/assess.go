// Package assess persists a completed risk assessment back into an
// opportunity's Current RMS custom fields.
package assess

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/prostaff-av/riskdash/internal/catalog"
	"github.com/prostaff-av/riskdash/internal/model"
	"github.com/prostaff-av/riskdash/internal/scoring"
	"github.com/prostaff-av/riskdash/pkg/currentrms"
)

// Input is one full assessment as entered by a user. The selection must
// cover every catalog factor; the UI supplies midpoint defaults so a partial
// selection indicates a programming error.
type Input struct {
	Selection  scoring.Selection      `json:"selection"`
	Reviewed   bool                   `json:"reviewed"`
	Mitigation model.MitigationStatus `json:"mitigation"`
	Notes      string                 `json:"notes"`
}

// Option configures the service.
type Option func(*Service)

// WithNow overrides the clock (for testing).
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service saves assessments upstream.
type Service struct {
	client currentrms.Client
	now    func() time.Time
}

// NewService creates a Service backed by the given client.
func NewService(client currentrms.Client, opts ...Option) *Service {
	s := &Service{client: client, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save computes the score for the input and overwrites all risk custom
// fields on the opportunity. An invalid selection aborts before any network
// call. The caller's in-memory record must only be updated after Save
// returns nil: upstream failures leave the stored record untouched.
//
// There is no optimistic-concurrency check against the opportunity's
// updated_at instant, so two users assessing the same opportunity at once
// can lose one update.
func (s *Service) Save(ctx context.Context, opportunityID int64, in Input) (scoring.Assessment, error) {
	a, err := scoring.Compute(in.Selection)
	if err != nil {
		return scoring.Assessment{}, eris.Wrap(err, "assess: refusing to save")
	}

	fields := CustomFields(in, a, s.now().UTC())
	if err := s.client.UpdateOpportunity(ctx, opportunityID, fields); err != nil {
		return scoring.Assessment{}, eris.Wrap(err, fmt.Sprintf("assess: save opportunity %d", opportunityID))
	}

	zap.L().Info("assess: saved assessment",
		zap.Int64("opportunity_id", opportunityID),
		zap.Float64("score", a.Score),
		zap.String("tier", string(a.Tier)),
	)
	return a, nil
}

// CustomFields builds the full custom-field overwrite for one assessment.
// risk_reviewed uses the upstream two-value string encoding ("Yes" or the
// empty string), never a native boolean.
func CustomFields(in Input, a scoring.Assessment, now time.Time) map[string]any {
	fields := map[string]any{
		"risk_score":            a.Score,
		"risk_level":            string(a.Tier),
		"risk_reviewed":         reviewedWire(in.Reviewed),
		"risk_mitigation_plan":  int(in.Mitigation),
		"risk_mitigation_notes": in.Notes,
		"risk_last_updated":     now.Format(time.RFC3339),
	}
	for _, f := range catalog.Factors() {
		fields[f.CustomField()] = in.Selection[f.Key]
	}
	return fields
}

func reviewedWire(reviewed bool) string {
	if reviewed {
		return "Yes"
	}
	return ""
}
