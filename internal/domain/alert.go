package domain

import (
	"errors"
	"time"
)

// Alert type identifiers as stored in the alert_types reference table.
const (
	AlertTypeHeatWave   = "onda_calor"
	AlertTypeHeavyRain  = "chuvas_fortes"
	AlertTypeStrongWind = "ventos_fortes"
)

// Severity labels. Current-condition breaches are classified alta; forecast
// breaches media, except current strong winds which the classification keeps
// at media.
const (
	SeverityHigh   = "alta"
	SeverityMedium = "media"
	SeverityLow    = "baixa"
)

// DateLayout is the wire form of an alert date (UTC calendar day).
const DateLayout = "2006-01-02"

// displayDateLayout is the pt-BR form used in notifications.
const displayDateLayout = "02/01/2006"

// ErrUnknownAlertType marks a candidate whose type id has no row in the
// alert_types reference table. Such candidates are dropped, not persisted.
var ErrUnknownAlertType = errors.New("unknown alert type")

// City is immutable reference data. Coordinates are pointers because rows
// may lack them; a city without both coordinates is skipped, not an error.
type City struct {
	ID   string
	Name string
	Lat  *float64
	Lon  *float64
}

// HasCoordinates reports whether the city can be evaluated at all.
func (c City) HasCoordinates() bool {
	return c.Lat != nil && c.Lon != nil
}

// AlertType is reference data describing one alert classification.
type AlertType struct {
	ID         string
	Name       string
	Icon       string
	ColorClass string
}

// CandidateAlert is an alert computed by rule evaluation before any
// persistence attempt. Its natural key is (CityID, TypeID, Date).
type CandidateAlert struct {
	CityID      string
	CityName    string
	TypeID      string
	Date        string // YYYY-MM-DD, UTC
	Description string
	Severity    string
}

// AlertEvent is a persisted alert, enriched with the display name of its
// type. Created exactly once per natural key; never updated or deleted.
type AlertEvent struct {
	ID          int64  `json:"id"`
	CityID      string `json:"city_id"`
	CityName    string `json:"city_name"`
	TypeID      string `json:"alert_type_id"`
	TypeName    string `json:"alert_type"`
	Date        string `json:"alert_date"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// AlertDetail is the per-recipient notification payload unit.
type AlertDetail struct {
	CityName    string
	AlertDate   string // display form, DD/MM/YYYY
	AlertType   string
	Description string
	Severity    string
}

// DisplayDate converts a YYYY-MM-DD alert date to the pt-BR display form
// used in notification digests. Unparseable input is returned as-is.
func DisplayDate(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(displayDateLayout)
}
