package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/energy-weather-explorer/internal/period"
)

func hourly(start time.Time, temps ...float64) []Reading {
	out := make([]Reading, len(temps))
	for i, temp := range temps {
		out[i] = Reading{
			Timestamp:               start.Add(time.Duration(i) * time.Hour),
			TemperatureCelsius:      temp,
			RelativeHumidityPercent: 80,
			WindSpeedKmh:            float64(i),
			SunshineDurationMinutes: 30,
		}
	}
	return out
}

func TestAggregatePeriodsDaily(t *testing.T) {
	start := time.Date(2024, time.April, 1, 22, 0, 0, 0, time.UTC)
	readings := hourly(start, 4, 6, 8, 10) // 22:00, 23:00 on the 1st; 00:00, 01:00 on the 2nd

	got := AggregatePeriods(readings, period.Day)
	require.Len(t, got, 2)

	assert.Equal(t, "2024-04-01", got[0].PeriodLabel)
	assert.InDelta(t, 5, got[0].AvgTemperatureCelsius, 1e-9)
	assert.InDelta(t, 0.5, got[0].AvgWindSpeedKmh, 1e-9)
	assert.InDelta(t, 60, got[0].TotalSunshineDurationMinutes, 1e-9)

	assert.Equal(t, "2024-04-02", got[1].PeriodLabel)
	assert.InDelta(t, 9, got[1].AvgTemperatureCelsius, 1e-9)
	assert.InDelta(t, 80, got[1].AvgRelativeHumidityPercent, 1e-9)
	assert.Equal(t, time.Date(2024, time.April, 3, 0, 0, 0, 0, time.UTC), got[1].PeriodEnd)
}

func TestAggregatePeriodsYear(t *testing.T) {
	readings := append(
		hourly(time.Date(2023, time.December, 31, 23, 0, 0, 0, time.UTC), 1),
		hourly(time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC), 20, 22)...,
	)
	got := AggregatePeriods(readings, period.Year)
	require.Len(t, got, 2)
	assert.Equal(t, "2023", got[0].PeriodLabel)
	assert.Equal(t, "2024", got[1].PeriodLabel)
	assert.InDelta(t, 21, got[1].AvgTemperatureCelsius, 1e-9)
}

func TestAggregatePeriodsEmpty(t *testing.T) {
	assert.Empty(t, AggregatePeriods(nil, period.Month))
}

func TestSummariseEmptyHasNoNaN(t *testing.T) {
	s := Summarise("x", time.Time{}, time.Time{}, nil)
	assert.Zero(t, s.AvgTemperatureCelsius)
	assert.Zero(t, s.TotalSunshineDurationMinutes)
}
