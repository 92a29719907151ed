// Package explorer fetches consumption and weather from the upstream
// providers and runs them through the aggregation engine.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/energy-weather-explorer/internal/common"
	"github.com/i474232898/energy-weather-explorer/internal/config"
	"github.com/i474232898/energy-weather-explorer/internal/correlation"
	"github.com/i474232898/energy-weather-explorer/internal/energy"
	"github.com/i474232898/energy-weather-explorer/internal/metrics"
	"github.com/i474232898/energy-weather-explorer/internal/period"
	"github.com/i474232898/energy-weather-explorer/internal/weather"
)

// ErrInvalidRequest marks errors caused by the caller's input.
var ErrInvalidRequest = errors.New("invalid request")

// ConsumptionFetcher reads meter consumption from the energy supplier.
type ConsumptionFetcher interface {
	Consumption(ctx context.Context, apiKey string, meter energy.MeterConfiguration, fuel energy.FuelType, from, to time.Time, groupBy string) ([]energy.Reading, error)
}

// WeatherSource serves archive weather for a location.
type WeatherSource interface {
	History(ctx context.Context, loc weather.Location, from, to time.Time) ([]weather.Reading, error)
	Summaries(ctx context.Context, loc weather.Location, from, to time.Time, g period.Granularity) ([]weather.Summary, error)
}

// Geocoder resolves a postcode to coordinates.
type Geocoder interface {
	Resolve(ctx context.Context, postcode string) (weather.Location, error)
}

// Service orchestrates upstream fetches for the HTTP API.
type Service struct {
	energy   ConsumptionFetcher
	weather  WeatherSource
	geocoder Geocoder
	settings config.EnergySettings
}

// NewService creates a new Service. settings supplies defaults for requests
// that leave meter fields blank.
func NewService(consumption ConsumptionFetcher, archive WeatherSource, geocoder Geocoder, settings config.EnergySettings) *Service {
	return &Service{
		energy:   consumption,
		weather:  archive,
		geocoder: geocoder,
		settings: settings,
	}
}

// Consumption returns the raw readings of every usable meter in [from, to).
func (s *Service) Consumption(ctx context.Context, meters Meters, from, to time.Time, fuel *energy.FuelType) ([]energy.Reading, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	return s.fetch(ctx, meters, from, to, "", fuel)
}

// Periods buckets consumption by g, one series per fuel.
func (s *Service) Periods(ctx context.Context, meters Meters, from, to time.Time, g period.Granularity, fuel *energy.FuelType) ([]energy.Comparison, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("%w: unknown period %d", ErrInvalidRequest, g)
	}
	if err := checkRange(from, to); err != nil {
		return nil, err
	}

	readings, err := s.fetch(ctx, meters, from, to, "", fuel)
	if err != nil {
		return nil, err
	}

	out := []energy.Comparison{}
	for _, f := range fuels(fuel) {
		out = append(out, energy.AggregatePeriods(readings, f, g)...)
	}
	metrics.IncAggregation("periods", g.String())
	return out, nil
}

// Compare overlays the periods of granularity g starting at startA and startB.
// Both windows are fetched concurrently.
func (s *Service) Compare(ctx context.Context, meters Meters, g period.Granularity, startA, startB time.Time, fuel *energy.FuelType) (energy.PeriodComparison, error) {
	if !energy.Comparable(g) {
		return energy.PeriodComparison{}, fmt.Errorf("%w: periods of %s cannot be compared", ErrInvalidRequest, g)
	}

	fromA, toA := energy.PeriodBounds(g, startA)
	fromB, toB := energy.PeriodBounds(g, startB)

	groupBy := "day"
	if g == period.Year {
		groupBy = "month"
	}

	var readingsA, readingsB []energy.Reading
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		readingsA, err = s.fetch(egCtx, meters, fromA, toA, groupBy, fuel)
		return err
	})
	eg.Go(func() error {
		var err error
		readingsB, err = s.fetch(egCtx, meters, fromB, toB, groupBy, fuel)
		return err
	})
	if err := eg.Wait(); err != nil {
		return energy.PeriodComparison{}, err
	}

	metrics.IncAggregation("comparison", g.String())
	return energy.BuildPeriodComparison(readingsA, readingsB, g, startA, startB), nil
}

// Correlate pairs daily consumption with daily weather at loc. With no fuel
// filter, points for every fuel are returned.
func (s *Service) Correlate(ctx context.Context, meters Meters, loc weather.Location, from, to time.Time, fuel *energy.FuelType) ([]correlation.Point, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	if s.weather == nil {
		return nil, errors.New("weather source not configured")
	}

	var readings []energy.Reading
	var observations []weather.Reading
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		// One point per day is enough for a scatter plot.
		readings, err = s.fetch(egCtx, meters, from, to, "day", fuel)
		return err
	})
	eg.Go(func() error {
		var err error
		observations, err = s.weather.History(egCtx, loc, from, to)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	metrics.IncAggregation("correlation", period.Day.String())
	points := correlation.BuildAll(readings, observations, fuels(fuel)...)
	if points == nil {
		points = []correlation.Point{}
	}
	return points, nil
}

// WeatherSummary aggregates archive weather at loc by g.
func (s *Service) WeatherSummary(ctx context.Context, loc weather.Location, from, to time.Time, g period.Granularity) ([]weather.Summary, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("%w: unknown period %d", ErrInvalidRequest, g)
	}
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	if s.weather == nil {
		return nil, errors.New("weather source not configured")
	}

	summaries, err := s.weather.Summaries(ctx, loc, from, to, g)
	if err != nil {
		return nil, err
	}
	metrics.IncAggregation("weather", g.String())
	if summaries == nil {
		summaries = []weather.Summary{}
	}
	return summaries, nil
}

// Geocode resolves a postcode to coordinates.
func (s *Service) Geocode(ctx context.Context, postcode string) (weather.Location, error) {
	if common.Blank(postcode) {
		return weather.Location{}, fmt.Errorf("%w: postcode is required", ErrInvalidRequest)
	}
	if s.geocoder == nil {
		return weather.Location{}, errors.New("geocoder not configured")
	}
	return s.geocoder.Resolve(ctx, postcode)
}

// Settings returns the server-configured household settings. When neither an
// API key nor a postcode is configured, an empty Settings is returned. A
// configured postcode without coordinates is geocoded; failure leaves 0/0.
func (s *Service) Settings(ctx context.Context) Settings {
	cfg := s.settings
	if common.Blank(cfg.OctopusAPIKey) && common.Blank(cfg.Postcode) {
		return Settings{}
	}

	out := Settings{
		OctopusAPIKey:      cfg.OctopusAPIKey,
		Postcode:           cfg.Postcode,
		Latitude:           cfg.Latitude,
		Longitude:          cfg.Longitude,
		IsFromServerConfig: true,
	}
	if !common.Blank(cfg.ElectricityMPAN) {
		out.ElectricityMeter = &energy.MeterConfiguration{MeterPointReference: cfg.ElectricityMPAN, SerialNumber: cfg.ElectricitySerial}
	}
	if !common.Blank(cfg.GasMPRN) {
		out.GasMeter = &energy.MeterConfiguration{MeterPointReference: cfg.GasMPRN, SerialNumber: cfg.GasSerial}
	}

	if !common.Blank(cfg.Postcode) && cfg.Latitude == 0 && cfg.Longitude == 0 && s.geocoder != nil {
		loc, err := s.geocoder.Resolve(ctx, cfg.Postcode)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("postcode", cfg.Postcode).Msg("settings postcode could not be geocoded")
		} else {
			out.Latitude, out.Longitude = loc.Latitude, loc.Longitude
		}
	}
	return out
}

// fetch reads every usable meter concurrently and concatenates the readings
// in meter order (electricity, then gas).
func (s *Service) fetch(ctx context.Context, meters Meters, from, to time.Time, groupBy string, fuel *energy.FuelType) ([]energy.Reading, error) {
	meters = s.withDefaults(meters)
	pairs := meters.pairs(fuel)
	if len(pairs) == 0 {
		zerolog.Ctx(ctx).Debug().Msg("no meters configured; returning no readings")
		return []energy.Reading{}, nil
	}
	if common.Blank(meters.OctopusAPIKey) {
		return nil, fmt.Errorf("%w: octopus api key is required", ErrInvalidRequest)
	}
	if s.energy == nil {
		return nil, errors.New("energy source not configured")
	}

	results := make([][]energy.Reading, len(pairs))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, p := range pairs {
		i, p := i, p
		eg.Go(func() error {
			readings, err := s.energy.Consumption(egCtx, meters.OctopusAPIKey, p.meter, p.fuel, from, to, groupBy)
			if err != nil {
				return fmt.Errorf("fetch %s consumption: %w", p.fuel, err)
			}
			results[i] = readings
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var all []energy.Reading
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

// withDefaults fills blank meter fields from the server settings. Meter
// reference and serial are taken together so a request never mixes them.
func (s *Service) withDefaults(m Meters) Meters {
	cfg := s.settings
	m.OctopusAPIKey = common.FirstNonBlank(m.OctopusAPIKey, cfg.OctopusAPIKey)
	if common.Blank(m.ElectricityMPAN) && common.Blank(m.ElectricitySerial) {
		m.ElectricityMPAN, m.ElectricitySerial = cfg.ElectricityMPAN, cfg.ElectricitySerial
	}
	if common.Blank(m.GasMPRN) && common.Blank(m.GasSerial) {
		m.GasMPRN, m.GasSerial = cfg.GasMPRN, cfg.GasSerial
	}
	return m
}

func checkRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return fmt.Errorf("%w: from and to are required", ErrInvalidRequest)
	}
	if to.Before(from) {
		return fmt.Errorf("%w: to is before from", ErrInvalidRequest)
	}
	return nil
}
