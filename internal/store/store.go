// Package store caches the last successfully fetched opportunity collection
// so the dashboard stays usable when the upstream API is unreachable or
// unconfigured. It keeps exactly one snapshot: the in-memory collection is
// rebuilt on every fetch, and the snapshot mirrors that.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/prostaff-av/riskdash/internal/model"
)

// ErrNoSnapshot indicates that nothing has been cached yet.
var ErrNoSnapshot = eris.New("store: no snapshot")

// Store is the snapshot cache interface.
type Store interface {
	// SaveSnapshot replaces the cached collection wholesale.
	SaveSnapshot(ctx context.Context, opps []model.Opportunity, fetchedAt time.Time) error
	// LoadSnapshot returns the cached collection and the instant it was
	// fetched, or ErrNoSnapshot.
	LoadSnapshot(ctx context.Context) ([]model.Opportunity, time.Time, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
