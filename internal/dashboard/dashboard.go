// Package dashboard assembles the data the risk views run on: it fetches
// from Current RMS when credentials allow, falls back to the most recent
// cached snapshot when the API is unreachable, and falls back again to the
// built-in demonstration dataset so the UI never renders an empty shell.
package dashboard

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/prostaff-av/riskdash/internal/daterange"
	"github.com/prostaff-av/riskdash/internal/demo"
	"github.com/prostaff-av/riskdash/internal/fetch"
	"github.com/prostaff-av/riskdash/internal/model"
	"github.com/prostaff-av/riskdash/internal/normalize"
	"github.com/prostaff-av/riskdash/internal/pipeline"
	"github.com/prostaff-av/riskdash/internal/store"
	"github.com/prostaff-av/riskdash/pkg/currentrms"
)

// Source names where a load's data came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceSnapshot Source = "snapshot"
	SourceDemo     Source = "demo"
)

// Load is a window's worth of normalized opportunities plus provenance.
type Load struct {
	Opportunities []model.Opportunity
	Source        Source
	FetchedAt     time.Time
}

// View is the tiered dashboard payload for one load.
type View struct {
	Result    pipeline.Result `json:"result"`
	Source    Source          `json:"source"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Service loads opportunity data with fallback and applies the filter
// pipeline. A nil client means no credentials are configured and live
// fetching is skipped entirely.
type Service struct {
	client  currentrms.Client
	store   store.Store
	perPage int
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a dashboard Service. client and st may each be nil; the
// fallback chain skips whichever is absent.
func New(client currentrms.Client, st store.Store, perPage int, opts ...Option) *Service {
	s := &Service{
		client:  client,
		store:   st,
		perPage: perPage,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the opportunities for a window, trying live data first, then
// the cached snapshot, then the demonstration dataset. A successful live
// fetch refreshes the snapshot best-effort; a cache write failure never
// fails the load.
func (s *Service) Load(ctx context.Context, w daterange.Window) (Load, error) {
	if s.client != nil {
		raw, err := fetch.FetchAll(ctx, fetch.ListPager(s.client, w.StartDate(), w.EndDate(), s.perPage), s.perPage, nil)
		if err == nil {
			opps := normalizeAll(raw)
			now := s.now()
			if s.store != nil {
				if serr := s.store.SaveSnapshot(ctx, opps, now); serr != nil {
					zap.L().Warn("snapshot refresh failed", zap.Error(serr))
				}
			}
			return Load{Opportunities: opps, Source: SourceLive, FetchedAt: now}, nil
		}
		if ctx.Err() != nil {
			return Load{}, eris.Wrap(err, "dashboard: live fetch")
		}
		zap.L().Warn("live fetch failed, falling back", zap.Error(err))
	}

	if s.store != nil {
		opps, fetchedAt, err := s.store.LoadSnapshot(ctx)
		if err == nil {
			return Load{Opportunities: inWindow(opps, w), Source: SourceSnapshot, FetchedAt: fetchedAt}, nil
		}
		if !eris.Is(err, store.ErrNoSnapshot) {
			zap.L().Warn("snapshot load failed, falling back", zap.Error(err))
		}
	}

	now := s.now()
	return Load{Opportunities: inWindow(demo.Opportunities(now), w), Source: SourceDemo, FetchedAt: now}, nil
}

// View loads a window and runs the filter pipeline over it.
func (s *Service) View(ctx context.Context, f pipeline.Filters) (View, error) {
	load, err := s.Load(ctx, f.Window)
	if err != nil {
		return View{}, err
	}
	return View{
		Result:    pipeline.Apply(load.Opportunities, f),
		Source:    load.Source,
		FetchedAt: load.FetchedAt,
	}, nil
}

func normalizeAll(raw []currentrms.RawOpportunity) []model.Opportunity {
	opps := make([]model.Opportunity, 0, len(raw))
	for _, r := range raw {
		opps = append(opps, normalize.Normalize(r))
	}
	return opps
}

// inWindow re-applies the date bounds to cached or demo data, which was not
// filtered server-side the way a live listing is.
func inWindow(opps []model.Opportunity, w daterange.Window) []model.Opportunity {
	if w.Start.IsZero() && !w.HasEnd {
		return opps
	}
	kept := make([]model.Opportunity, 0, len(opps))
	for _, o := range opps {
		if !o.StartsAt.IsZero() && w.Contains(o.StartsAt) {
			kept = append(kept, o)
		}
	}
	return kept
}
