package energy

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/i474232898/energy-weather-explorer/internal/period"
)

// AggregatePeriods totals the readings of one fuel per period. The result is
// in chronological order and each entry carries the previous entry's total
// as its prior period; the first has none. Readings of other fuels are
// ignored.
//
// An invalid granularity panics.
func AggregatePeriods(readings []Reading, fuel FuelType, g period.Granularity) []Comparison {
	buckets := period.Group(FilterFuel(readings, fuel), g, intervalStart)

	out := make([]Comparison, 0, len(buckets))
	for i, b := range buckets {
		c := Comparison{
			PeriodLabel: b.Label,
			PeriodStart: b.Start,
			PeriodEnd:   b.End,
			TotalKWh:    Total(b.Items),
			FuelType:    fuel,
		}
		if i > 0 {
			prior := out[i-1].TotalKWh
			c.PriorPeriodKWh = &prior
		}
		out = append(out, c)
	}
	return out
}

// FilterFuel returns the readings of the given fuel, preserving order.
func FilterFuel(readings []Reading, fuel FuelType) []Reading {
	var out []Reading
	for _, r := range readings {
		if r.FuelType == fuel {
			out = append(out, r)
		}
	}
	return out
}

// Total sums consumption exactly.
func Total(readings []Reading) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range readings {
		sum = sum.Add(r.ConsumptionKWh)
	}
	return sum
}

func intervalStart(r Reading) time.Time { return r.IntervalStart }
