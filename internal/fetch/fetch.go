// Package fetch drives repeated page requests against the Current RMS
// opportunities listing until exhaustion.
package fetch

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/prostaff-av/riskdash/pkg/currentrms"
)

// maxPages is a hard safety ceiling against a misbehaving or
// infinitely-paginating upstream.
const maxPages = 1000

// Page is one page of results plus the listing's total-count metadata.
type Page struct {
	Items         []currentrms.RawOpportunity
	TotalRowCount int
}

// Pager fetches one page by number, starting at 1.
type Pager func(ctx context.Context, page int) (Page, error)

// Publish receives each page's items as they arrive, enabling progressive
// disclosure in the UI. It never changes the accumulated result.
type Publish func(items []currentrms.RawOpportunity)

// ListPager adapts a Current RMS client into a Pager for the given date
// bounds.
func ListPager(client currentrms.Client, startsAtGTEQ, startsAtLTEQ string, perPage int) Pager {
	return func(ctx context.Context, page int) (Page, error) {
		resp, err := client.ListOpportunities(ctx, currentrms.ListParams{
			StartsAtGTEQ: startsAtGTEQ,
			StartsAtLTEQ: startsAtLTEQ,
			Page:         page,
			PerPage:      perPage,
		})
		if err != nil {
			return Page{}, err
		}
		return Page{Items: resp.Opportunities, TotalRowCount: resp.Meta.TotalRowCount}, nil
	}
}

// FetchAll accumulates every page the pager can produce. Pages are fetched
// one at a time: whether a later page exists depends on the total-count
// metadata returned with earlier pages. Iteration stops on an empty page,
// on reaching the computed page count, or at the safety ceiling.
func FetchAll(ctx context.Context, pager Pager, perPage int, publish Publish) ([]currentrms.RawOpportunity, error) {
	if perPage <= 0 {
		return nil, eris.New("fetch: perPage must be positive")
	}

	var all []currentrms.RawOpportunity
	for page := 1; ; page++ {
		p, err := pager(ctx, page)
		if err != nil {
			return nil, eris.Wrapf(err, "fetch: page %d", page)
		}
		if len(p.Items) == 0 {
			break
		}

		all = append(all, p.Items...)
		if publish != nil {
			publish(p.Items)
		}

		totalPages := (p.TotalRowCount + perPage - 1) / perPage
		if page >= totalPages {
			break
		}
		if page >= maxPages {
			zap.L().Warn("fetch: stopping at page safety ceiling",
				zap.Int("pages", page),
				zap.Int("total_row_count", p.TotalRowCount),
			)
			break
		}
	}

	return all, nil
}
