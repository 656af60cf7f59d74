// Package serper provides a client for the Serper web search API, used
// to gather property listing snippets for price estimation.
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/kerala-atlas/locality-cli/internal/resilience"
)

const defaultBaseURL = "https://google.serper.dev"

// Client performs web searches.
type Client interface {
	// Search runs a web search and returns organic results.
	Search(ctx context.Context, query string, opts ...SearchOption) (*SearchResponse, error)
}

// SearchResponse is the parsed Serper response.
type SearchResponse struct {
	Organic []OrganicResult `json:"organic"`
}

// OrganicResult is a single organic search result.
type OrganicResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// SearchOption configures a search request.
type SearchOption func(*searchOpts)

type searchOpts struct {
	num int
	gl  string
}

// WithNumResults sets how many results to request.
func WithNumResults(n int) SearchOption {
	return func(o *searchOpts) {
		o.num = n
	}
}

// WithCountry sets the country code for localized results.
func WithCountry(gl string) SearchOption {
	return func(o *searchOpts) {
		o.gl = gl
	}
}

// Option configures the Serper client.
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

// WithRetryConfig overrides the default retry behavior.
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewClient creates a new Serper client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		retry: resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num,omitempty"`
	GL  string `json:"gl,omitempty"`
}

func (c *httpClient) Search(ctx context.Context, query string, opts ...SearchOption) (*SearchResponse, error) {
	so := &searchOpts{num: 10, gl: "in"}
	for _, opt := range opts {
		opt(so)
	}

	payload, err := json.Marshal(searchRequest{Q: query, Num: so.num, GL: so.gl})
	if err != nil {
		return nil, eris.Wrap(err, "serper: marshal request")
	}

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
		if err != nil {
			return nil, eris.Wrap(err, "serper: create request")
		}
		req.Header.Set("X-API-KEY", c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, resilience.NewTransientError(err, 0)
		}
		defer resp.Body.Close() //nolint:errcheck

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "serper: read response")
		}

		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(
				eris.Errorf("serper: status %d: %s", resp.StatusCode, string(respBody)),
				resp.StatusCode,
			)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, eris.Errorf("serper: unexpected status %d: %s", resp.StatusCode, string(respBody))
		}

		return respBody, nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "serper: search request failed")
	}

	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "serper: unmarshal response")
	}

	return &result, nil
}
