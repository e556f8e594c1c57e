package domain

import (
	"sort"
	"strings"
	"time"
)

// CurrentConditions is a normalized current-weather observation. Ephemeral,
// produced fresh per evaluation cycle and never persisted.
type CurrentConditions struct {
	Temperature float64 // °C
	Rain1h      float64 // mm accumulated over the last hour, 0 when absent
	WindSpeed   float64 // m/s
}

// ForecastEntry is one normalized 3-hour forecast slot.
type ForecastEntry struct {
	Timestamp   time.Time // UTC
	TempMax     float64   // °C
	TempMin     float64   // °C
	Pop         float64   // probability of precipitation, 0–1, 0 when absent
	Description string
	WindSpeed   float64 // m/s
}

// ForecastDay aggregates all forecast entries that fall on one UTC calendar
// day.
type ForecastDay struct {
	Date         string // YYYY-MM-DD
	MaxTemp      float64
	MaxPop       float64
	Descriptions []string // lowercased
	MaxWind      float64
}

// BuildForecastDays groups forecast entries by UTC date and computes the
// per-day maxima used by the forecast rules. Days are returned in date
// order.
func BuildForecastDays(entries []ForecastEntry) []ForecastDay {
	byDate := make(map[string]*ForecastDay)
	for _, e := range entries {
		date := e.Timestamp.UTC().Format(DateLayout)
		day, ok := byDate[date]
		if !ok {
			day = &ForecastDay{Date: date, MaxTemp: e.TempMax, MaxPop: e.Pop, MaxWind: e.WindSpeed}
			byDate[date] = day
		}
		if e.TempMax > day.MaxTemp {
			day.MaxTemp = e.TempMax
		}
		if e.Pop > day.MaxPop {
			day.MaxPop = e.Pop
		}
		if e.WindSpeed > day.MaxWind {
			day.MaxWind = e.WindSpeed
		}
		day.Descriptions = append(day.Descriptions, strings.ToLower(e.Description))
	}

	days := make([]ForecastDay, 0, len(byDate))
	for _, day := range byDate {
		days = append(days, *day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}
