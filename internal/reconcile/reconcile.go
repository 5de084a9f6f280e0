// Package reconcile repairs opportunities whose stored risk_level label no
// longer matches the tier their stored score maps to. The label is written
// alongside the score on every save, but records touched by older tooling
// or edited by hand in Current RMS can drift.
package reconcile

import (
	"context"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/prostaff-av/riskdash/internal/scoring"
	"github.com/prostaff-av/riskdash/pkg/currentrms"
)

// Stale is one opportunity carrying a label that disagrees with its score.
type Stale struct {
	ID      int64
	Subject string
	Stored  string
	Want    scoring.Tier
}

// FindStale returns the opportunities whose stored risk_level differs from
// the tier derived from their stored risk_score. Unscored records with no
// stored label are consistent and skipped.
func FindStale(raw []currentrms.RawOpportunity) []Stale {
	var stale []Stale
	for _, r := range raw {
		score, ok := customFloat(r.CustomFields, "risk_score")
		stored := customString(r.CustomFields, "risk_level")
		if !ok && stored == "" {
			continue
		}
		want := scoring.TierForScore(score)
		if stored == string(want) {
			continue
		}
		id, ok := wireID(r.ID)
		if !ok {
			continue
		}
		subject, _ := r.Subject.(string)
		stale = append(stale, Stale{ID: id, Subject: subject, Stored: stored, Want: want})
	}
	return stale
}

// Run rewrites the risk_level field on each stale record, issuing at most
// limit PATCHes concurrently. Records are disjoint so update order does not
// matter. Returns the number repaired.
func Run(ctx context.Context, client currentrms.Client, stale []Stale, limit int) (int, error) {
	if limit <= 0 {
		limit = 4
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, s := range stale {
		g.Go(func() error {
			err := client.UpdateOpportunity(ctx, s.ID, map[string]any{
				"risk_level": string(s.Want),
			})
			if err != nil {
				return eris.Wrapf(err, "reconcile: opportunity %d", s.ID)
			}
			zap.L().Info("risk level repaired",
				zap.Int64("opportunity_id", s.ID),
				zap.String("from", s.Stored),
				zap.String("to", string(s.Want)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(stale), nil
}

func customFloat(fields map[string]any, key string) (float64, bool) {
	switch v := fields[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func customString(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

func wireID(v any) (int64, bool) {
	switch id := v.(type) {
	case float64:
		return int64(id), true
	case int:
		return int64(id), true
	case int64:
		return id, true
	case string:
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
