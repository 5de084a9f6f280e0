// Package currentrms provides token-authenticated REST access to the
// Current RMS API.
package currentrms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// ErrInvalidShape indicates a listing response missing the expected
// opportunities array. The fetch that hit it cannot proceed.
var ErrInvalidShape = eris.New("currentrms: response missing opportunities array")

// Client defines the Current RMS operations used by the dashboard.
type Client interface {
	// Call performs a raw API request and returns the response body.
	// Non-2xx responses become errors carrying the server's message text.
	Call(ctx context.Context, endpoint, method string, body any) (json.RawMessage, error)
	// ListOpportunities fetches one page of the opportunities listing.
	ListOpportunities(ctx context.Context, params ListParams) (*OpportunityPage, error)
	// UpdateOpportunity PATCHes an opportunity's custom fields.
	UpdateOpportunity(ctx context.Context, id int64, customFields map[string]any) error
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets a per-second rate limit for API calls.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

type httpClient struct {
	subdomain string
	token     string
	baseURL   string
	http      *http.Client
	limiter   *rate.Limiter
}

// NewClient creates a Current RMS client for the given subdomain and auth
// token.
func NewClient(subdomain, token string, opts ...Option) Client {
	c := &httpClient{
		subdomain: subdomain,
		token:     token,
		baseURL:   "https://api.current-rms.com/api/v1",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// retryDo executes a request with exponential backoff on transient failures
// (429, 500, 502, 503). The payload is re-marshaled per attempt so PATCH
// bodies survive retries.
func (c *httpClient) retryDo(ctx context.Context, method, reqURL string, payload []byte) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
		if err != nil {
			return nil, 0, eris.Wrap(err, "currentrms: create request")
		}
		req.Header.Set("X-SUBDOMAIN", c.subdomain)
		req.Header.Set("X-AUTH-TOKEN", c.token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, 0, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, 0, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, eris.Wrap(readErr, "currentrms: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("currentrms: status %d: %s", resp.StatusCode, string(body))
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}

// serverMessage extracts the human-readable error text from an upstream
// error body, falling back to the raw body.
func serverMessage(body []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Message != "" {
			return e.Message
		}
	}
	return string(body)
}

func (c *httpClient) Call(ctx context.Context, endpoint, method string, body any) (json.RawMessage, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "currentrms: rate limit")
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, eris.Wrap(err, "currentrms: marshal body")
		}
	}

	reqURL := c.baseURL + "/" + endpoint
	respBody, status, err := c.retryDo(ctx, method, reqURL, payload)
	if err != nil {
		return nil, eris.Wrap(err, "currentrms: request failed")
	}
	if status < 200 || status > 299 {
		return nil, eris.Errorf("currentrms: status %d: %s", status, serverMessage(respBody))
	}
	return respBody, nil
}

func (c *httpClient) ListOpportunities(ctx context.Context, params ListParams) (*OpportunityPage, error) {
	q := url.Values{}
	if params.StartsAtGTEQ != "" {
		q.Set("q[starts_at_gteq]", params.StartsAtGTEQ)
	}
	if params.StartsAtLTEQ != "" {
		q.Set("q[starts_at_lteq]", params.StartsAtLTEQ)
	}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(params.PerPage))
	}

	endpoint := "opportunities"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	body, err := c.Call(ctx, endpoint, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}

	// Decode in two steps so a present-but-empty array is distinguishable
	// from a missing one.
	var envelope struct {
		Opportunities json.RawMessage `json:"opportunities"`
		Meta          Meta            `json:"meta"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, eris.Wrap(err, "currentrms: unmarshal listing")
	}
	if envelope.Opportunities == nil {
		return nil, ErrInvalidShape
	}

	page := &OpportunityPage{Meta: envelope.Meta}
	if err := json.Unmarshal(envelope.Opportunities, &page.Opportunities); err != nil {
		return nil, eris.Wrap(err, "currentrms: unmarshal opportunities")
	}
	return page, nil
}

func (c *httpClient) UpdateOpportunity(ctx context.Context, id int64, customFields map[string]any) error {
	payload := map[string]any{
		"opportunity": map[string]any{
			"custom_fields": customFields,
		},
	}
	endpoint := fmt.Sprintf("opportunities/%d", id)
	if _, err := c.Call(ctx, endpoint, http.MethodPatch, payload); err != nil {
		return eris.Wrap(err, fmt.Sprintf("currentrms: update opportunity %d", id))
	}
	return nil
}
