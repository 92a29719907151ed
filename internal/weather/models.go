package weather

import (
	"fmt"
	"time"
)

// Location is a point for which archive weather is requested.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return fmt.Sprintf("%.4f,%.4f", l.Latitude, l.Longitude)
}

// IsZero reports whether no coordinates are set.
func (l Location) IsZero() bool {
	return l.Latitude == 0 && l.Longitude == 0
}

// Reading is one hourly archive observation.
type Reading struct {
	Timestamp               time.Time `json:"timestamp"`
	TemperatureCelsius      float64   `json:"temperatureCelsius"`
	RelativeHumidityPercent float64   `json:"relativeHumidityPercent"`
	WindSpeedKmh            float64   `json:"windSpeedKmh"`
	SunshineDurationMinutes float64   `json:"sunshineDurationMinutes"`
}

// Summary is the weather of one period: averages of the instantaneous
// metrics and the total sunshine.
type Summary struct {
	PeriodLabel                  string    `json:"periodLabel"`
	PeriodStart                  time.Time `json:"periodStart"`
	PeriodEnd                    time.Time `json:"periodEnd"`
	AvgTemperatureCelsius        float64   `json:"avgTemperatureCelsius"`
	AvgRelativeHumidityPercent   float64   `json:"avgRelativeHumidityPercent"`
	AvgWindSpeedKmh              float64   `json:"avgWindSpeedKmh"`
	TotalSunshineDurationMinutes float64   `json:"totalSunshineDurationMinutes"`
}
