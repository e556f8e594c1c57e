package openweather

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_Current_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "pt_br", r.URL.Query().Get("lang"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"main": {"temp": 41.3},
			"rain": {"1h": 2.5},
			"wind": {"speed": 6.2}
		}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, 5*time.Second, testLogger())

	obs, err := c.Current(context.Background(), -20.81, -49.38)
	require.NoError(t, err)
	assert.Equal(t, 41.3, obs.Temperature)
	assert.Equal(t, 2.5, obs.Rain1h)
	assert.Equal(t, 6.2, obs.WindSpeed)
}

func TestClient_Current_NoRainField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"main": {"temp": 25.0}, "wind": {"speed": 3.0}}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, 5*time.Second, testLogger())

	obs, err := c.Current(context.Background(), -20.81, -49.38)
	require.NoError(t, err)
	assert.Equal(t, 0.0, obs.Rain1h, "absent rain block must read as zero")
}

func TestClient_Forecast_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"list": [
				{
					"dt_txt": "2026-01-16 09:00:00",
					"main": {"temp_max": 39.1, "temp_min": 24.0},
					"pop": 0.75,
					"weather": [{"description": "chuva forte"}],
					"wind": {"speed": 8.5}
				},
				{
					"dt_txt": "2026-01-16 12:00:00",
					"main": {"temp_max": 37.0, "temp_min": 26.0},
					"pop": 0.2,
					"weather": [],
					"wind": {"speed": 4.0}
				}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, 5*time.Second, testLogger())

	entries, err := c.Forecast(context.Background(), -20.81, -49.38)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, time.Date(2026, time.January, 16, 9, 0, 0, 0, time.UTC), first.Timestamp)
	assert.Equal(t, 39.1, first.TempMax)
	assert.Equal(t, 0.75, first.Pop)
	assert.Equal(t, "chuva forte", first.Description)
	assert.Equal(t, 8.5, first.WindSpeed)

	assert.Empty(t, entries[1].Description, "missing weather block must not panic")
}

func TestClient_Forecast_SkipsBadTimestamps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"list": [
				{"dt_txt": "not-a-timestamp", "main": {"temp_max": 30}, "pop": 0, "wind": {"speed": 1}},
				{"dt_txt": "2026-01-17 00:00:00", "main": {"temp_max": 31}, "pop": 0, "wind": {"speed": 1}}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, 5*time.Second, testLogger())

	entries, err := c.Forecast(context.Background(), -20.81, -49.38)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 31.0, entries[0].TempMax)
}

func TestClient_Current_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"cod": 401, "message": "Invalid API key"}`))
	}))
	defer srv.Close()

	c := NewClient("bad-key", srv.URL, 5*time.Second, testLogger())

	_, err := c.Current(context.Background(), -20.81, -49.38)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_Current_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, 50*time.Millisecond, testLogger())

	_, err := c.Current(context.Background(), -20.81, -49.38)
	require.Error(t, err)
}

func TestClient_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, 5*time.Second, testLogger())

	for range 5 {
		_, err := c.Current(context.Background(), -20.81, -49.38)
		require.Error(t, err)
	}

	_, err := c.Current(context.Background(), -20.81, -49.38)
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
}
