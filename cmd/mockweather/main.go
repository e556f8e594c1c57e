// Command mockweather serves canned OpenWeather responses for local
// development, so the engine can be exercised without an API key.
//
// Point the service at it with OPENWEATHER_BASE_URL=http://localhost:9100.
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"
)

func main() {
	addr := flag.String("addr", ":9100", "listen address")
	temp := flag.Float64("temp", 41.5, "current temperature in °C")
	rain := flag.Float64("rain", 0, "current rain in mm/h")
	wind := flag.Float64("wind", 3, "current wind speed in m/s")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /weather", func(w http.ResponseWriter, r *http.Request) {
		logger.Info("current weather request", "lat", r.URL.Query().Get("lat"), "lon", r.URL.Query().Get("lon"))
		writeJSON(w, map[string]any{
			"main": map[string]any{"temp": *temp},
			"rain": map[string]any{"1h": *rain},
			"wind": map[string]any{"speed": *wind},
		})
	})
	mux.HandleFunc("GET /forecast", func(w http.ResponseWriter, r *http.Request) {
		logger.Info("forecast request", "lat", r.URL.Query().Get("lat"), "lon", r.URL.Query().Get("lon"))
		writeJSON(w, map[string]any{"list": forecastEntries()})
	})

	logger.Info("mock openweather listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// forecastEntries fabricates two hot, rainy days starting tomorrow, enough
// to trigger every forecast rule.
func forecastEntries() []map[string]any {
	var entries []map[string]any
	for day := 1; day <= 2; day++ {
		base := time.Now().UTC().AddDate(0, 0, day).Truncate(24 * time.Hour)
		for _, hour := range []int{9, 12, 15} {
			entries = append(entries, map[string]any{
				"dt_txt": base.Add(time.Duration(hour) * time.Hour).Format("2006-01-02 15:04:05"),
				"main":   map[string]any{"temp_max": 39.2, "temp_min": 24.1},
				"pop":    0.85,
				"weather": []map[string]any{
					{"description": "chuva forte"},
				},
				"wind": map[string]any{"speed": 12.3},
			})
		}
	}
	return entries
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v) //nolint:errcheck // dev tool
}
