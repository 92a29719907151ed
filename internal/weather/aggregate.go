package weather

import (
	"time"

	"github.com/i474232898/energy-weather-explorer/internal/period"
)

// AggregatePeriods summarises readings per period of granularity g, in
// chronological order. Temperature, humidity and wind are averaged; sunshine
// is a duration and is summed.
//
// An invalid granularity panics.
func AggregatePeriods(readings []Reading, g period.Granularity) []Summary {
	buckets := period.Group(readings, g, timestamp)

	out := make([]Summary, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, Summarise(b.Label, b.Start, b.End, b.Items))
	}
	return out
}

// Summarise reduces a non-empty set of readings to one Summary.
func Summarise(label string, start, end time.Time, readings []Reading) Summary {
	var (
		sumTemp     float64
		sumHumidity float64
		sumWind     float64
		sunshine    float64
	)
	for _, r := range readings {
		sumTemp += r.TemperatureCelsius
		sumHumidity += r.RelativeHumidityPercent
		sumWind += r.WindSpeedKmh
		sunshine += r.SunshineDurationMinutes
	}

	s := Summary{
		PeriodLabel:                  label,
		PeriodStart:                  start,
		PeriodEnd:                    end,
		TotalSunshineDurationMinutes: sunshine,
	}
	if n := float64(len(readings)); n > 0 {
		s.AvgTemperatureCelsius = sumTemp / n
		s.AvgRelativeHumidityPercent = sumHumidity / n
		s.AvgWindSpeedKmh = sumWind / n
	}
	return s
}

func timestamp(r Reading) time.Time { return r.Timestamp }
