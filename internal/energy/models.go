package energy

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/i474232898/energy-weather-explorer/internal/period"
)

// FuelType identifies the metered supply.
type FuelType string

const (
	Electricity FuelType = "electricity"
	Gas         FuelType = "gas"
)

// FuelTypes lists every supported fuel in display order.
var FuelTypes = []FuelType{Electricity, Gas}

// ParseFuelType accepts the fuel names case-insensitively.
func ParseFuelType(s string) (FuelType, error) {
	switch f := FuelType(strings.ToLower(strings.TrimSpace(s))); f {
	case Electricity, Gas:
		return f, nil
	default:
		return "", fmt.Errorf("unknown fuel type %q", s)
	}
}

// Reading is one metered consumption interval as reported upstream.
type Reading struct {
	IntervalStart  time.Time       `json:"intervalStart"`
	IntervalEnd    time.Time       `json:"intervalEnd"`
	ConsumptionKWh decimal.Decimal `json:"consumptionKwh"`
	FuelType       FuelType        `json:"fuelType"`
}

// MeterConfiguration is the pair of identifiers Octopus uses for a meter.
type MeterConfiguration struct {
	MeterPointReference string `json:"meterPointReference"`
	SerialNumber        string `json:"serialNumber"`
}

// Comparison is the total for one period, with the previous period's total
// when there is one.
type Comparison struct {
	PeriodLabel    string
	PeriodStart    time.Time
	PeriodEnd      time.Time
	TotalKWh       decimal.Decimal
	FuelType       FuelType
	PriorPeriodKWh *decimal.Decimal
}

// ChangePercent is the change from the prior period in percent, rounded to
// one decimal place. It is nil without a prior period or when the prior total
// is zero.
func (c Comparison) ChangePercent() *decimal.Decimal {
	if c.PriorPeriodKWh == nil || c.PriorPeriodKWh.IsZero() {
		return nil
	}
	prior := *c.PriorPeriodKWh
	pct := c.TotalKWh.Sub(prior).Div(prior).Mul(decimal.NewFromInt(100)).RoundBank(1)
	return &pct
}

func (c Comparison) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		PeriodLabel    string      `json:"periodLabel"`
		PeriodStart    time.Time   `json:"periodStart"`
		PeriodEnd      time.Time   `json:"periodEnd"`
		TotalKWh       BucketValue `json:"totalKwh"`
		FuelType       FuelType    `json:"fuelType"`
		PriorPeriodKWh BucketValue `json:"priorPeriodKwh"`
		ChangePercent  BucketValue `json:"changePercent"`
	}{
		PeriodLabel:    c.PeriodLabel,
		PeriodStart:    c.PeriodStart,
		PeriodEnd:      c.PeriodEnd,
		TotalKWh:       Value(c.TotalKWh),
		FuelType:       c.FuelType,
		PriorPeriodKWh: optional(c.PriorPeriodKWh),
		ChangePercent:  optional(c.ChangePercent()),
	})
}

// BucketValue is either NoData or a decimal amount. NoData means no reading
// fell in the bucket, which is not the same thing as zero consumption.
type BucketValue struct {
	amount decimal.Decimal
	ok     bool
}

// NoData is the empty bucket.
func NoData() BucketValue { return BucketValue{} }

// Value wraps an amount.
func Value(d decimal.Decimal) BucketValue { return BucketValue{amount: d, ok: true} }

func optional(d *decimal.Decimal) BucketValue {
	if d == nil {
		return NoData()
	}
	return Value(*d)
}

// Get returns the amount and whether there is one.
func (b BucketValue) Get() (decimal.Decimal, bool) { return b.amount, b.ok }

func (b BucketValue) IsNoData() bool { return !b.ok }

// Add sums d into the bucket, starting from zero when it was empty.
func (b BucketValue) Add(d decimal.Decimal) BucketValue {
	return Value(b.amount.Add(d))
}

func (b BucketValue) String() string {
	if !b.ok {
		return "no data"
	}
	return b.amount.String()
}

// MarshalJSON writes null for NoData and a bare number otherwise.
func (b BucketValue) MarshalJSON() ([]byte, error) {
	if !b.ok {
		return []byte("null"), nil
	}
	return []byte(b.amount.String()), nil
}

func (b *BucketValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = NoData()
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*b = Value(d)
	return nil
}

// PeriodComparison overlays two periods of the same granularity on a shared
// sub-period axis. Every series has len(SubPeriodLabels) entries.
type PeriodComparison struct {
	PeriodType      period.Granularity `json:"periodType"`
	PeriodALabel    string             `json:"periodALabel"`
	PeriodBLabel    string             `json:"periodBLabel"`
	SubPeriodLabels []string           `json:"subPeriodLabels"`
	ElectricityA    []BucketValue      `json:"electricityA"`
	ElectricityB    []BucketValue      `json:"electricityB"`
	GasA            []BucketValue      `json:"gasA"`
	GasB            []BucketValue      `json:"gasB"`
}
