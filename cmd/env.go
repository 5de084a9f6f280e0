package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/prostaff-av/riskdash/internal/dashboard"
	"github.com/prostaff-av/riskdash/internal/store"
	"github.com/prostaff-av/riskdash/pkg/currentrms"
)

// env bundles the external dependencies commands share. Client and Store
// are nil when unconfigured or unavailable; the dashboard service degrades
// through its fallback chain instead of failing.
type env struct {
	Client currentrms.Client
	Store  store.Store
	Board  *dashboard.Service
}

func (e *env) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("store close failed", zap.Error(err))
		}
	}
}

func initEnv(ctx context.Context) (*env, error) {
	e := &env{}

	if cfg.CurrentRMS.Configured() {
		e.Client = currentrms.NewClient(cfg.CurrentRMS.Subdomain, cfg.CurrentRMS.Token,
			currentrms.WithBaseURL(cfg.CurrentRMS.BaseURL),
			currentrms.WithRateLimit(cfg.CurrentRMS.RatePerSec),
		)
	} else {
		zap.L().Info("no Current RMS credentials configured, running on cached or demo data")
	}

	st, err := openStore(ctx)
	if err != nil {
		zap.L().Warn("snapshot store unavailable", zap.Error(err))
	} else {
		e.Store = st
	}

	e.Board = dashboard.New(e.Client, e.Store, cfg.Fetch.PerPage)
	return e, nil
}

func openStore(ctx context.Context) (store.Store, error) {
	var st store.Store
	switch cfg.Store.Driver {
	case "postgres":
		ps, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		st = ps
	case "sqlite", "":
		ss, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		st = ss
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// requireClient returns the client or an error for commands that cannot run
// without live API access.
func (e *env) requireClient() (currentrms.Client, error) {
	if e.Client == nil {
		return nil, eris.New("Current RMS credentials are not configured (set RISKDASH_CURRENTRMS_SUBDOMAIN and RISKDASH_CURRENTRMS_TOKEN)")
	}
	return e.Client, nil
}
