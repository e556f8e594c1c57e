// Package domain models the climate alert generation rules for monitored
// cities.
//
// # Data Source
//
// Weather data comes from the OpenWeatherMap API (current conditions and the
// 5-day/3-hour forecast), queried per city by coordinates with metric units
// and pt_br descriptions. Cities, alert types, and subscriptions are
// reference data maintained externally in PostgreSQL; the engine only reads
// them.
//
// # Alert Rules
//
// Alerts are generated when a measurement strictly exceeds its threshold
// (never >=):
//
//	Current conditions (alert dated today, UTC):
//	  temperature  > 40 °C      → onda_calor     (alta)
//	  1h rainfall  > 20 mm      → chuvas_fortes  (alta)
//	  wind speed   > 11.11 m/s  → ventos_fortes  (media)
//
//	Forecast days (today excluded, already covered by the current check):
//	  max temperature > 38 °C                            → onda_calor    (media)
//	  max pop > 0.6 AND rain keyword in any description  → chuvas_fortes (media)
//	  max wind speed > 11.11 m/s                         → ventos_fortes (media)
//
// Rain keywords are the pt_br descriptors "chuva", "tempestade" and
// "temporal", matched as lowercase substrings. Wind thresholds are in m/s as
// reported by the provider; descriptions convert to km/h (×3.6, one
// decimal). Temperatures are formatted to one decimal, precipitation
// probability as an integer percentage, rainfall as reported.
//
// # Alert Identity
//
// An alert's natural key is (city id, alert type id, alert date). At most
// one alert exists per key; the store enforces this with a unique constraint
// and insert-or-ignore semantics, which makes repeated runs over unchanged
// weather data produce no new rows.
//
// # Time
//
// All alert dates are UTC calendar days in YYYY-MM-DD form. The package
// clock can be swapped in tests via SetClock to pin "today".
package domain
