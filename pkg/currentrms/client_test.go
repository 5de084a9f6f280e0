package currentrms

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListOpportunities_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "demo", r.Header.Get("X-SUBDOMAIN"))
		assert.Equal(t, "tok-123", r.Header.Get("X-AUTH-TOKEN"))
		assert.Equal(t, "/opportunities", r.URL.Path)
		assert.Equal(t, "2026-01-01", r.URL.Query().Get("q[starts_at_gteq]"))
		assert.Equal(t, "2026-01-31", r.URL.Query().Get("q[starts_at_lteq]"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("per_page"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"opportunities": [
				{"id": 42, "subject": "Conference AV", "charge_total": "1200.50"},
				{"id": "43", "subject": "Gala dinner"}
			],
			"meta": {"total_row_count": 130, "per_page": 50, "page": 2, "row_count": 2}
		}`)
	}))
	defer srv.Close()

	client := NewClient("demo", "tok-123", WithBaseURL(srv.URL))
	page, err := client.ListOpportunities(context.Background(), ListParams{
		StartsAtGTEQ: "2026-01-01",
		StartsAtLTEQ: "2026-01-31",
		Page:         2,
		PerPage:      50,
	})

	require.NoError(t, err)
	require.Len(t, page.Opportunities, 2)
	assert.Equal(t, 130, page.Meta.TotalRowCount)
	assert.Equal(t, 50, page.Meta.PerPage)
	assert.Equal(t, "Conference AV", page.Opportunities[0].Subject)
	// Heterogeneous encodings survive decoding untouched.
	assert.Equal(t, "1200.50", page.Opportunities[0].ChargeTotal)
	assert.Equal(t, "43", page.Opportunities[1].ID)
}

func TestListOpportunities_MissingArray(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"meta": {"total_row_count": 0}}`)
	}))
	defer srv.Close()

	client := NewClient("demo", "tok", WithBaseURL(srv.URL))
	_, err := client.ListOpportunities(context.Background(), ListParams{Page: 1, PerPage: 50})

	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInvalidShape))
}

func TestListOpportunities_EmptyArrayIsNotAnError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"opportunities": [], "meta": {"total_row_count": 0, "per_page": 50, "page": 1, "row_count": 0}}`)
	}))
	defer srv.Close()

	client := NewClient("demo", "tok", WithBaseURL(srv.URL))
	page, err := client.ListOpportunities(context.Background(), ListParams{Page: 1, PerPage: 50})

	require.NoError(t, err)
	assert.Empty(t, page.Opportunities)
}

func TestCall_NonSuccessCarriesServerMessage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"error":"Validation failed: starts_at is invalid"}`)
	}))
	defer srv.Close()

	client := NewClient("demo", "tok", WithBaseURL(srv.URL))
	_, err := client.Call(context.Background(), "opportunities", http.MethodGet, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "Validation failed: starts_at is invalid")
}

func TestCall_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, `{"ok": true}`)
	}))
	defer srv.Close()

	client := NewClient("demo", "tok", WithBaseURL(srv.URL))
	body, err := client.Call(context.Background(), "opportunities", http.MethodGet, nil)

	require.NoError(t, err)
	assert.JSONEq(t, `{"ok": true}`, string(body))
	assert.Equal(t, int32(2), calls.Load())
}

func TestUpdateOpportunity_PayloadShape(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/opportunities/42", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		opp, ok := payload["opportunity"].(map[string]any)
		require.True(t, ok)
		cf, ok := opp["custom_fields"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Yes", cf["risk_reviewed"])
		assert.InDelta(t, 3.25, cf["risk_score"], 1e-9)

		io.WriteString(w, `{"opportunity": {"id": 42}}`)
	}))
	defer srv.Close()

	client := NewClient("demo", "tok", WithBaseURL(srv.URL))
	err := client.UpdateOpportunity(context.Background(), 42, map[string]any{
		"risk_reviewed": "Yes",
		"risk_score":    3.25,
	})

	require.NoError(t, err)
}

func TestUpdateOpportunity_UpstreamFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"Couldn't find Opportunity"}`)
	}))
	defer srv.Close()

	client := NewClient("demo", "tok", WithBaseURL(srv.URL))
	err := client.UpdateOpportunity(context.Background(), 999, map[string]any{"risk_score": 2.0})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Couldn't find Opportunity")
}
