package domain

import (
	"fmt"
	"strings"
)

// Rule thresholds. Comparisons are strictly greater-than; a measurement
// exactly at the threshold does not trigger.
const (
	currentTempThresholdC  = 40.0
	forecastTempThresholdC = 38.0
	currentRainThresholdMM = 20.0
	forecastPopThreshold   = 0.6
	windThresholdMS        = 11.11
)

// rainKeywords are the pt_br descriptors that gate the forecast rain rule.
var rainKeywords = []string{"chuva", "tempestade", "temporal"}

// Today returns the current UTC calendar day.
func Today() string {
	return clock.Now().UTC().Format(DateLayout)
}

// EvaluateCurrent applies the current-condition rules to one observation,
// producing zero or more candidates dated today. Rules are independent; one
// observation can trigger several distinct alert types.
func EvaluateCurrent(city City, obs CurrentConditions) []CandidateAlert {
	today := Today()
	var candidates []CandidateAlert

	if obs.Temperature > currentTempThresholdC {
		candidates = append(candidates, CandidateAlert{
			CityID:      city.ID,
			CityName:    city.Name,
			TypeID:      AlertTypeHeatWave,
			Date:        today,
			Description: fmt.Sprintf("Temperatura atual elevada de %.1f°C.", obs.Temperature),
			Severity:    SeverityHigh,
		})
	}
	if obs.Rain1h > currentRainThresholdMM {
		candidates = append(candidates, CandidateAlert{
			CityID:      city.ID,
			CityName:    city.Name,
			TypeID:      AlertTypeHeavyRain,
			Date:        today,
			Description: fmt.Sprintf("Chuva intensa atual de %gmm/h.", obs.Rain1h),
			Severity:    SeverityHigh,
		})
	}
	if obs.WindSpeed > windThresholdMS {
		candidates = append(candidates, CandidateAlert{
			CityID:      city.ID,
			CityName:    city.Name,
			TypeID:      AlertTypeStrongWind,
			Date:        today,
			Description: fmt.Sprintf("Ventos fortes atuais de %.1f km/h.", toKmh(obs.WindSpeed)),
			Severity:    SeverityMedium,
		})
	}

	return candidates
}

// EvaluateForecast applies the forecast rules to per-day aggregates. Today
// is excluded: the current-conditions rules already cover it, and evaluating
// it again would double-alert the same natural key date.
func EvaluateForecast(city City, days []ForecastDay) []CandidateAlert {
	today := Today()
	var candidates []CandidateAlert

	for _, day := range days {
		if day.Date == today {
			continue
		}

		if day.MaxTemp > forecastTempThresholdC {
			candidates = append(candidates, CandidateAlert{
				CityID:      city.ID,
				CityName:    city.Name,
				TypeID:      AlertTypeHeatWave,
				Date:        day.Date,
				Description: fmt.Sprintf("Previsão de temperatura máxima de %.1f°C.", day.MaxTemp),
				Severity:    SeverityMedium,
			})
		}
		if day.MaxPop > forecastPopThreshold && hasRainDescription(day.Descriptions) {
			candidates = append(candidates, CandidateAlert{
				CityID:      city.ID,
				CityName:    city.Name,
				TypeID:      AlertTypeHeavyRain,
				Date:        day.Date,
				Description: fmt.Sprintf("Previsão de %.0f%% de chance de chuva.", day.MaxPop*100),
				Severity:    SeverityMedium,
			})
		}
		if day.MaxWind > windThresholdMS {
			candidates = append(candidates, CandidateAlert{
				CityID:      city.ID,
				CityName:    city.Name,
				TypeID:      AlertTypeStrongWind,
				Date:        day.Date,
				Description: fmt.Sprintf("Previsão de ventos fortes de até %.1f km/h.", toKmh(day.MaxWind)),
				Severity:    SeverityMedium,
			})
		}
	}

	return candidates
}

// hasRainDescription reports whether any lowercased description carries a
// rain keyword. A high pop alone is not enough to call for heavy rain.
func hasRainDescription(descriptions []string) bool {
	for _, desc := range descriptions {
		for _, kw := range rainKeywords {
			if strings.Contains(desc, kw) {
				return true
			}
		}
	}
	return false
}

func toKmh(ms float64) float64 {
	return ms * 3.6
}
