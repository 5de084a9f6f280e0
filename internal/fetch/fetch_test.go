package fetch

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prostaff-av/riskdash/pkg/currentrms"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// fakePager simulates a listing with the given total count, returning full
// pages of perPage items until the total is exhausted.
func fakePager(total, perPage int, calls *[]int) Pager {
	return func(ctx context.Context, page int) (Page, error) {
		*calls = append(*calls, page)
		start := (page - 1) * perPage
		n := min(perPage, total-start)
		if n < 0 {
			n = 0
		}
		items := make([]currentrms.RawOpportunity, n)
		for i := range items {
			items[i] = currentrms.RawOpportunity{ID: float64(start + i + 1)}
		}
		return Page{Items: items, TotalRowCount: total}, nil
	}
}

func TestFetchAll_ExactPageCount(t *testing.T) {
	// 130 rows at 50 per page means exactly 3 requests.
	var calls []int
	got, err := FetchAll(context.Background(), fakePager(130, 50, &calls), 50, nil)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, calls)
	assert.Len(t, got, 130)
}

func TestFetchAll_SinglePage(t *testing.T) {
	var calls []int
	got, err := FetchAll(context.Background(), fakePager(7, 50, &calls), 50, nil)

	require.NoError(t, err)
	assert.Equal(t, []int{1}, calls)
	assert.Len(t, got, 7)
}

func TestFetchAll_EmptyListing(t *testing.T) {
	var calls []int
	got, err := FetchAll(context.Background(), fakePager(0, 50, &calls), 50, nil)

	require.NoError(t, err)
	assert.Equal(t, []int{1}, calls)
	assert.Empty(t, got)
}

func TestFetchAll_StopsOnEmptyPageDespiteTotal(t *testing.T) {
	// Upstream claims more rows than it returns; the empty page wins.
	pager := func(ctx context.Context, page int) (Page, error) {
		if page > 2 {
			return Page{Items: nil, TotalRowCount: 500}, nil
		}
		return Page{
			Items:         []currentrms.RawOpportunity{{ID: float64(page)}},
			TotalRowCount: 500,
		}, nil
	}

	got, err := FetchAll(context.Background(), pager, 1, nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFetchAll_SafetyCeiling(t *testing.T) {
	// An upstream that always reports more pages must not loop forever.
	var pages int
	pager := func(ctx context.Context, page int) (Page, error) {
		pages++
		return Page{
			Items:         []currentrms.RawOpportunity{{ID: float64(page)}},
			TotalRowCount: 1 << 30,
		}, nil
	}

	got, err := FetchAll(context.Background(), pager, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, maxPages, pages)
	assert.Len(t, got, maxPages)
}

func TestFetchAll_PublishDoesNotChangeResult(t *testing.T) {
	var calls []int
	var published []currentrms.RawOpportunity
	publish := func(items []currentrms.RawOpportunity) {
		published = append(published, items...)
	}

	got, err := FetchAll(context.Background(), fakePager(130, 50, &calls), 50, publish)
	require.NoError(t, err)

	var silent []int
	plain, err := FetchAll(context.Background(), fakePager(130, 50, &silent), 50, nil)
	require.NoError(t, err)

	assert.Equal(t, plain, got)
	assert.Equal(t, got, published)
}

func TestFetchAll_PropagatesPagerError(t *testing.T) {
	boom := eris.New("upstream exploded")
	pager := func(ctx context.Context, page int) (Page, error) {
		if page == 2 {
			return Page{}, boom
		}
		return Page{
			Items:         []currentrms.RawOpportunity{{ID: float64(page)}},
			TotalRowCount: 100,
		}, nil
	}

	_, err := FetchAll(context.Background(), pager, 1, nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, boom))
	assert.Contains(t, err.Error(), "page 2")
}

func TestFetchAll_InvalidPerPage(t *testing.T) {
	_, err := FetchAll(context.Background(), fakePager(10, 50, &[]int{}), 0, nil)
	assert.Error(t, err)
}
