// Package correlation pairs daily energy totals with the same day's weather.
package correlation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/i474232898/energy-weather-explorer/internal/energy"
	"github.com/i474232898/energy-weather-explorer/internal/period"
	"github.com/i474232898/energy-weather-explorer/internal/weather"
)

// Point is one calendar day's consumption next to that day's weather.
type Point struct {
	Date                    time.Time       `json:"date"`
	ConsumptionKWh          decimal.Decimal `json:"consumptionKwh"`
	FuelType                energy.FuelType `json:"fuelType"`
	TemperatureCelsius      float64         `json:"temperatureCelsius"`
	RelativeHumidityPercent float64         `json:"relativeHumidityPercent"`
	WindSpeedKmh            float64         `json:"windSpeedKmh"`
	SunshineDurationMinutes float64         `json:"sunshineDurationMinutes"`
}

// BuildPoints joins the fuel's daily totals with daily weather on the
// calendar date. Days missing on either side are dropped. Points are in date
// order.
func BuildPoints(readings []energy.Reading, observations []weather.Reading, fuel energy.FuelType) []Point {
	days := period.Group(energy.FilterFuel(readings, fuel), period.Day, func(r energy.Reading) time.Time {
		return r.IntervalStart
	})

	daily := make(map[time.Time]weather.Summary)
	for _, s := range weather.AggregatePeriods(observations, period.Day) {
		daily[s.PeriodStart] = s
	}

	points := make([]Point, 0, min(len(days), len(daily)))
	for _, d := range days {
		w, ok := daily[d.Start]
		if !ok {
			continue
		}
		points = append(points, Point{
			Date:                    d.Start,
			ConsumptionKWh:          energy.Total(d.Items),
			FuelType:                fuel,
			TemperatureCelsius:      w.AvgTemperatureCelsius,
			RelativeHumidityPercent: w.AvgRelativeHumidityPercent,
			WindSpeedKmh:            w.AvgWindSpeedKmh,
			SunshineDurationMinutes: w.TotalSunshineDurationMinutes,
		})
	}
	return points
}

// BuildAll concatenates the points of each fuel in the order given.
func BuildAll(readings []energy.Reading, observations []weather.Reading, fuels ...energy.FuelType) []Point {
	var out []Point
	for _, f := range fuels {
		out = append(out, BuildPoints(readings, observations, f)...)
	}
	return out
}
