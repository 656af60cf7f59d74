package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerala-atlas/locality-cli/internal/resilience"
)

// noRetry avoids backoff sleeps in failure tests.
var noRetry = resilience.RetryConfig{MaxAttempts: 1}

func TestNearbySearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/maps/api/place/nearbysearch/json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "school", r.URL.Query().Get("type"))
		assert.Equal(t, "3000", r.URL.Query().Get("radius"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [
				{
					"place_id": "ChIJ-school1",
					"name": "Model School",
					"rating": 4.2,
					"geometry": {"location": {"lat": 8.51, "lng": 76.95}}
				},
				{
					"place_id": "ChIJ-school2",
					"name": "Central School",
					"geometry": {"location": {"lat": 8.52, "lng": 76.96}}
				}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	places, err := client.NearbySearch(context.Background(), 8.5, 76.9, "school", 3000)

	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, "ChIJ-school1", places[0].PlaceID)
	assert.Equal(t, "Model School", places[0].Name)
	require.NotNil(t, places[0].Rating)
	assert.InDelta(t, 4.2, *places[0].Rating, 0.001)
	assert.InDelta(t, 8.51, places[0].Lat, 0.001)
	assert.Nil(t, places[1].Rating)
}

func TestNearbySearch_ZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	places, err := client.NearbySearch(context.Background(), 8.5, 76.9, "zoo", 3000)

	require.NoError(t, err)
	assert.Empty(t, places)
}

func TestNearbySearch_RequestDenied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "invalid API key"}`))
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL), WithRetryConfig(noRetry))
	places, err := client.NearbySearch(context.Background(), 8.5, 76.9, "school", 3000)

	assert.Error(t, err)
	assert.Nil(t, places)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestNearbySearch_RetriesTransientStatus(t *testing.T) {
	callCount := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		callCount++
		if callCount == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "OK", "results": []}`))
	}))
	defer srv.Close()

	retry := resilience.RetryConfig{MaxAttempts: 2, InitialBackoff: 1, MaxBackoff: 1}
	client := NewClient("test-key", WithBaseURL(srv.URL), WithRetryConfig(retry))
	_, err := client.NearbySearch(context.Background(), 8.5, 76.9, "school", 3000)

	require.NoError(t, err)
	assert.Equal(t, 2, callCount)
}

func TestNearbySearch_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithRetryConfig(noRetry))
	places, err := client.NearbySearch(ctx, 8.5, 76.9, "school", 3000)

	assert.Error(t, err)
	assert.Nil(t, places)
}

func TestTravelTime_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/distancematrix/json", r.URL.Path)
		assert.Equal(t, "driving", r.URL.Query().Get("mode"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"rows": [{"elements": [{"status": "OK", "duration": {"value": 1530}}]}]
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	minutes, err := client.TravelTime(context.Background(), 8.5, 76.9, 8.55, 76.88)

	require.NoError(t, err)
	// 1530 seconds rounds to 26 minutes.
	assert.Equal(t, 26, minutes)
}

func TestTravelTime_NoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"rows": [{"elements": [{"status": "ZERO_RESULTS"}]}]
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithRetryConfig(noRetry))
	_, err := client.TravelTime(context.Background(), 8.5, 76.9, 0, 0)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ZERO_RESULTS")
}

func TestElevation_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/elevation/json", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [{"elevation": 42.7}]
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	elev, err := client.Elevation(context.Background(), 8.5, 76.9)

	require.NoError(t, err)
	assert.InDelta(t, 42.7, elev, 0.001)
}

func TestElevation_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "forbidden"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithRetryConfig(noRetry))
	_, err := client.Elevation(context.Background(), 8.5, 76.9)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
