package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/couchcryptid/climate-alert-service/internal/domain"
)

// Client implements engine.WeatherProvider using the OpenWeather API.
// Both endpoints are queried with units=metric and lang=pt_br so that
// temperatures arrive in °C, wind in m/s, and descriptions in Portuguese
// for the rain keyword check.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewClient creates an OpenWeather client. The circuit breaker opens after
// repeated failures so a provider outage degrades a run instead of stalling
// it on timeouts for every city.
func NewClient(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	settings := gobreaker.Settings{
		Name:    "openweather",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "client", name, "from", from.String(), "to", to.String())
		},
	}

	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// Current fetches current conditions for one coordinate pair.
func (c *Client) Current(ctx context.Context, lat, lon float64) (domain.CurrentConditions, error) {
	var raw currentResponse
	if err := c.get(ctx, "/weather", lat, lon, &raw); err != nil {
		return domain.CurrentConditions{}, err
	}

	return domain.CurrentConditions{
		Temperature: raw.Main.Temp,
		Rain1h:      raw.Rain.OneH,
		WindSpeed:   raw.Wind.Speed,
	}, nil
}

// Forecast fetches the 5-day / 3-hour forecast for one coordinate pair.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) ([]domain.ForecastEntry, error) {
	var raw forecastResponse
	if err := c.get(ctx, "/forecast", lat, lon, &raw); err != nil {
		return nil, err
	}

	entries := make([]domain.ForecastEntry, 0, len(raw.List))
	for _, item := range raw.List {
		ts, err := time.Parse("2006-01-02 15:04:05", item.DtTxt)
		if err != nil {
			c.logger.Warn("skipping forecast entry with bad timestamp", "dt_txt", item.DtTxt, "error", err)
			continue
		}

		var description string
		if len(item.Weather) > 0 {
			description = item.Weather[0].Description
		}

		entries = append(entries, domain.ForecastEntry{
			Timestamp:   ts.UTC(),
			TempMax:     item.Main.TempMax,
			TempMin:     item.Main.TempMin,
			Pop:         item.Pop,
			Description: description,
			WindSpeed:   item.Wind.Speed,
		})
	}

	return entries, nil
}

func (c *Client) get(ctx context.Context, path string, lat, lon float64, out any) error {
	params := url.Values{
		"lat":   {fmt.Sprintf("%f", lat)},
		"lon":   {fmt.Sprintf("%f", lon)},
		"appid": {c.apiKey},
		"units": {"metric"},
		"lang":  {"pt_br"},
	}
	fullURL := c.baseURL + path + "?" + params.Encode()

	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.doRequest(ctx, fullURL, out)
	})
	return err
}

func (c *Client) doRequest(ctx context.Context, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("openweather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("openweather API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// OpenWeather API response types.

type currentResponse struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Rain struct {
		OneH float64 `json:"1h"`
	} `json:"rain"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

type forecastResponse struct {
	List []forecastItem `json:"list"`
}

type forecastItem struct {
	DtTxt string `json:"dt_txt"` // "2006-01-02 15:04:05", UTC
	Main  struct {
		TempMax float64 `json:"temp_max"`
		TempMin float64 `json:"temp_min"`
	} `json:"main"`
	Pop     float64 `json:"pop"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}
