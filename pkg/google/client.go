// Package google provides a client for the Google Maps Platform web
// services used during data collection: Places Nearby Search, Distance
// Matrix, and Elevation.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/kerala-atlas/locality-cli/internal/resilience"
)

const defaultBaseURL = "https://maps.googleapis.com"

// Client defines the Maps Platform operations used by collectors.
type Client interface {
	// NearbySearch returns places of the given type within radius meters
	// of the point.
	NearbySearch(ctx context.Context, lat, lng float64, placeType string, radius int) ([]Place, error)
	// TravelTime returns the driving time in minutes between two points.
	TravelTime(ctx context.Context, originLat, originLng, destLat, destLng float64) (int, error)
	// Elevation returns the elevation in meters at the point.
	Elevation(ctx context.Context, lat, lng float64) (float64, error)
}

// Place represents a place returned by Nearby Search.
type Place struct {
	PlaceID string
	Name    string
	Lat     float64
	Lng     float64
	Rating  *float64
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithQPS caps the request rate shared across all three endpoints.
func WithQPS(qps float64) Option {
	return func(c *httpClient) {
		if qps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(qps), 1)
		}
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
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewClient creates a Google Maps Platform client.
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
		limiter: rate.NewLimiter(rate.Limit(10), 1),
		retry:   resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// get performs a rate-limited GET with retries on transient failures.
func (c *httpClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	params.Set("key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "google: create request")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, resilience.NewTransientError(err, 0)
		}
		defer resp.Body.Close() //nolint:errcheck

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "google: read response")
		}

		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(
				eris.Errorf("google: status %d: %s", resp.StatusCode, string(body)),
				resp.StatusCode,
			)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, eris.Errorf("google: unexpected status %d: %s", resp.StatusCode, string(body))
		}

		return body, nil
	})
}

type nearbyResponse struct {
	Status  string `json:"status"`
	Results []struct {
		PlaceID  string   `json:"place_id"`
		Name     string   `json:"name"`
		Rating   *float64 `json:"rating"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	ErrorMessage string `json:"error_message"`
}

func (c *httpClient) NearbySearch(ctx context.Context, lat, lng float64, placeType string, radius int) ([]Place, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", lat, lng))
	params.Set("radius", fmt.Sprintf("%d", radius))
	params.Set("type", placeType)

	body, err := c.get(ctx, "/maps/api/place/nearbysearch/json", params)
	if err != nil {
		return nil, eris.Wrap(err, "google: nearby search")
	}

	var result nearbyResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "google: unmarshal nearby response")
	}

	switch result.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, nil
	case "OVER_QUERY_LIMIT":
		return nil, resilience.NewTransientError(
			eris.Errorf("google: nearby search: %s", result.Status), http.StatusTooManyRequests)
	default:
		return nil, eris.Errorf("google: nearby search status %s: %s", result.Status, result.ErrorMessage)
	}

	places := make([]Place, 0, len(result.Results))
	for _, r := range result.Results {
		places = append(places, Place{
			PlaceID: r.PlaceID,
			Name:    r.Name,
			Lat:     r.Geometry.Location.Lat,
			Lng:     r.Geometry.Location.Lng,
			Rating:  r.Rating,
		})
	}
	return places, nil
}

type matrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Duration struct {
				Value int `json:"value"` // seconds
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
	ErrorMessage string `json:"error_message"`
}

func (c *httpClient) TravelTime(ctx context.Context, originLat, originLng, destLat, destLng float64) (int, error) {
	params := url.Values{}
	params.Set("origins", fmt.Sprintf("%f,%f", originLat, originLng))
	params.Set("destinations", fmt.Sprintf("%f,%f", destLat, destLng))
	params.Set("mode", "driving")

	body, err := c.get(ctx, "/maps/api/distancematrix/json", params)
	if err != nil {
		return 0, eris.Wrap(err, "google: distance matrix")
	}

	var result matrixResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, eris.Wrap(err, "google: unmarshal matrix response")
	}

	if result.Status != "OK" {
		return 0, eris.Errorf("google: distance matrix status %s: %s", result.Status, result.ErrorMessage)
	}
	if len(result.Rows) == 0 || len(result.Rows[0].Elements) == 0 {
		return 0, eris.New("google: distance matrix returned no elements")
	}

	elem := result.Rows[0].Elements[0]
	if elem.Status != "OK" {
		return 0, eris.Errorf("google: distance matrix element status %s", elem.Status)
	}

	// Round seconds to the nearest minute.
	return (elem.Duration.Value + 30) / 60, nil
}

type elevationResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Elevation float64 `json:"elevation"`
	} `json:"results"`
	ErrorMessage string `json:"error_message"`
}

func (c *httpClient) Elevation(ctx context.Context, lat, lng float64) (float64, error) {
	params := url.Values{}
	params.Set("locations", fmt.Sprintf("%f,%f", lat, lng))

	body, err := c.get(ctx, "/maps/api/elevation/json", params)
	if err != nil {
		return 0, eris.Wrap(err, "google: elevation")
	}

	var result elevationResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, eris.Wrap(err, "google: unmarshal elevation response")
	}

	if result.Status != "OK" {
		return 0, eris.Errorf("google: elevation status %s: %s", result.Status, result.ErrorMessage)
	}
	if len(result.Results) == 0 {
		return 0, eris.New("google: elevation returned no results")
	}

	return result.Results[0].Elevation, nil
}
