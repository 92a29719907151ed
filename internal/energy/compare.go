package energy

import (
	"fmt"
	"strconv"
	"time"

	"github.com/i474232898/energy-weather-explorer/internal/period"
)

// axis is a shared sub-period axis: the labels and how a timestamp maps to a
// label index. The index ignores which year or month a reading belongs to so
// that two different periods overlay each other.
type axis struct {
	labels []string
	index  func(time.Time) int
}

var (
	monthLabels   = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	weekdayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
)

var axes = map[period.Granularity]func(startA, startB time.Time) axis{
	period.Year: func(_, _ time.Time) axis {
		return axis{
			labels: monthLabels,
			index:  func(t time.Time) int { return int(t.Month()) - 1 },
		}
	},
	period.Month: func(startA, startB time.Time) axis {
		n := max(period.DaysIn(startA), period.DaysIn(startB))
		labels := make([]string, n)
		for i := range labels {
			labels[i] = strconv.Itoa(i + 1)
		}
		return axis{
			labels: labels,
			index:  func(t time.Time) int { return t.Day() - 1 },
		}
	},
	period.Week: func(_, _ time.Time) axis {
		return axis{
			labels: weekdayLabels,
			index:  period.WeekdayIndex,
		}
	},
}

// BuildPeriodComparison places the readings of period A and period B on the
// sub-period axis of g: months of the year, days of the month or days of the
// week. Buckets nothing fell into stay NoData. The caller is expected to pass
// readings already clipped to each period's window (see PeriodBounds).
//
// Day has no sub-period axis; it and any invalid granularity panic.
func BuildPeriodComparison(readingsA, readingsB []Reading, g period.Granularity, startA, startB time.Time) PeriodComparison {
	build, ok := axes[g]
	if !ok {
		panic(fmt.Sprintf("energy: no comparison axis for granularity %s", g))
	}
	ax := build(startA, startB)

	return PeriodComparison{
		PeriodType:      g,
		PeriodALabel:    g.Label(startA),
		PeriodBLabel:    g.Label(startB),
		SubPeriodLabels: ax.labels,
		ElectricityA:    ax.fill(readingsA, Electricity),
		ElectricityB:    ax.fill(readingsB, Electricity),
		GasA:            ax.fill(readingsA, Gas),
		GasB:            ax.fill(readingsB, Gas),
	}
}

func (a axis) fill(readings []Reading, fuel FuelType) []BucketValue {
	buckets := make([]BucketValue, len(a.labels))
	for _, r := range readings {
		if r.FuelType != fuel {
			continue
		}
		i := a.index(r.IntervalStart)
		if i < 0 || i >= len(buckets) {
			continue
		}
		buckets[i] = buckets[i].Add(r.ConsumptionKWh)
	}
	return buckets
}

// PeriodBounds returns the [from, to) window of the period of granularity g
// starting at start. Only granularities with a comparison axis are accepted.
func PeriodBounds(g period.Granularity, start time.Time) (from, to time.Time) {
	if _, ok := axes[g]; !ok {
		panic(fmt.Sprintf("energy: no comparison window for granularity %s", g))
	}
	return start, g.End(start)
}

// Comparable reports whether g has a sub-period axis.
func Comparable(g period.Granularity) bool {
	_, ok := axes[g]
	return ok
}
