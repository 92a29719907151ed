package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/energy-weather-explorer/internal/correlation"
	"github.com/i474232898/energy-weather-explorer/internal/energy"
	"github.com/i474232898/energy-weather-explorer/internal/explorer"
	"github.com/i474232898/energy-weather-explorer/internal/period"
	"github.com/i474232898/energy-weather-explorer/internal/providers"
	"github.com/i474232898/energy-weather-explorer/internal/weather"
)

type stubExplorer struct {
	err error

	meters   explorer.Meters
	fuel     *energy.FuelType
	g        period.Granularity
	from, to time.Time
	loc      weather.Location
	postcode string
}

func (s *stubExplorer) Consumption(_ context.Context, meters explorer.Meters, from, to time.Time, fuel *energy.FuelType) ([]energy.Reading, error) {
	s.meters, s.from, s.to, s.fuel = meters, from, to, fuel
	if s.err != nil {
		return nil, s.err
	}
	return []energy.Reading{{IntervalStart: from, IntervalEnd: from.Add(30 * time.Minute), ConsumptionKWh: decimal.RequireFromString("0.25"), FuelType: energy.Electricity}}, nil
}

func (s *stubExplorer) Periods(_ context.Context, meters explorer.Meters, from, to time.Time, g period.Granularity, fuel *energy.FuelType) ([]energy.Comparison, error) {
	s.meters, s.from, s.to, s.g, s.fuel = meters, from, to, g, fuel
	return []energy.Comparison{}, s.err
}

func (s *stubExplorer) Compare(_ context.Context, meters explorer.Meters, g period.Granularity, startA, startB time.Time, fuel *energy.FuelType) (energy.PeriodComparison, error) {
	s.meters, s.g, s.from, s.to, s.fuel = meters, g, startA, startB, fuel
	if s.err != nil {
		return energy.PeriodComparison{}, s.err
	}
	return energy.BuildPeriodComparison(nil, nil, g, startA, startB), nil
}

func (s *stubExplorer) Correlate(_ context.Context, meters explorer.Meters, loc weather.Location, from, to time.Time, fuel *energy.FuelType) ([]correlation.Point, error) {
	s.meters, s.loc, s.from, s.to, s.fuel = meters, loc, from, to, fuel
	return []correlation.Point{}, s.err
}

func (s *stubExplorer) WeatherSummary(_ context.Context, loc weather.Location, from, to time.Time, g period.Granularity) ([]weather.Summary, error) {
	s.loc, s.from, s.to, s.g = loc, from, to, g
	return []weather.Summary{}, s.err
}

func (s *stubExplorer) Geocode(_ context.Context, postcode string) (weather.Location, error) {
	s.postcode = postcode
	if s.err != nil {
		return weather.Location{}, s.err
	}
	return weather.Location{Latitude: 51.5, Longitude: -0.12}, nil
}

func (s *stubExplorer) Settings(context.Context) explorer.Settings {
	return explorer.Settings{OctopusAPIKey: "key", IsFromServerConfig: true}
}

func newTestApp(svc Explorer) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(RequestContext(zerolog.Nop(), time.Second))
	RegisterRoutes(app, svc)
	return app
}

func post(t *testing.T, app *fiber.App, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	_ = json.Unmarshal(raw, &decoded)
	return resp, decoded
}

func TestConsumptionRoute(t *testing.T) {
	stub := &stubExplorer{}
	app := newTestApp(stub)

	resp, _ := post(t, app, "/api/v1/energy/consumption", `{
		"octopusApiKey":"sk","electricityMpan":"m","electricitySerial":"s",
		"from":"2024-01-01T00:00:00Z","to":"2024-01-02","fuelType":"Electricity"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "sk", stub.meters.OctopusAPIKey)
	assert.Equal(t, "m", stub.meters.ElectricityMPAN)
	require.NotNil(t, stub.fuel)
	assert.Equal(t, energy.Electricity, *stub.fuel)
	assert.Equal(t, time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), stub.to)
}

func TestConsumptionRouteValidation(t *testing.T) {
	app := newTestApp(&stubExplorer{})

	cases := map[string]string{
		"missing to":     `{"from":"2024-01-01"}`,
		"bad time":       `{"from":"yesterday","to":"2024-01-02"}`,
		"reversed range": `{"from":"2024-01-03","to":"2024-01-02"}`,
		"bad fuel":       `{"from":"2024-01-01","to":"2024-01-02","fuelType":"oil"}`,
		"not json":       `{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp, decoded := post(t, app, "/api/v1/energy/consumption", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, true, decoded["error"])
		})
	}
}

func TestPeriodsRouteParsesPeriod(t *testing.T) {
	stub := &stubExplorer{}
	app := newTestApp(stub)

	resp, _ := post(t, app, "/api/v1/energy/periods", `{"from":"2024-01-01","to":"2024-03-01","period":"Month"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, period.Month, stub.g)
	assert.Nil(t, stub.fuel)

	resp, _ = post(t, app, "/api/v1/energy/periods", `{"from":"2024-01-01","to":"2024-03-01","period":"fortnight"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestComparisonRoute(t *testing.T) {
	stub := &stubExplorer{}
	app := newTestApp(stub)

	resp, decoded := post(t, app, "/api/v1/energy/comparison", `{"period":"week","periodAStart":"2024-01-01","periodBStart":"2024-01-08"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "week", decoded["periodType"])
	assert.Len(t, decoded["subPeriodLabels"], 7)

	resp, _ = post(t, app, "/api/v1/energy/comparison", `{"period":"day","periodAStart":"2024-01-01","periodBStart":"2024-01-02"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCorrelationRoute(t *testing.T) {
	stub := &stubExplorer{}
	app := newTestApp(stub)

	resp, _ := post(t, app, "/api/v1/energy/correlation", `{"latitude":51.5,"longitude":-0.1,"from":"2024-01-01","to":"2024-01-31"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.InDelta(t, 51.5, stub.loc.Latitude, 1e-9)

	resp, _ = post(t, app, "/api/v1/energy/correlation", `{"latitude":123,"longitude":0,"from":"2024-01-01","to":"2024-01-31"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWeatherSummaryDefaultsToDay(t *testing.T) {
	stub := &stubExplorer{}
	app := newTestApp(stub)

	resp, _ := post(t, app, "/api/v1/weather/summary", `{"latitude":51.5,"longitude":-0.1,"from":"2024-01-01","to":"2024-01-07"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, period.Day, stub.g)
}

func TestGeocodeRoute(t *testing.T) {
	stub := &stubExplorer{}
	app := newTestApp(stub)

	resp, decoded := post(t, app, "/api/v1/weather/geocode", `{"postcode":"SW1A 1AA"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 51.5, decoded["latitude"])
	assert.Equal(t, "SW1A 1AA", stub.postcode)

	resp, _ = post(t, app, "/api/v1/weather/geocode", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServiceErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bad", explorer.ErrInvalidRequest), http.StatusBadRequest},
		{fmt.Errorf("postcodes: %w", providers.ErrPostcodeNotFound), http.StatusNotFound},
		{fmt.Errorf("fetch gas consumption: %w", providers.ErrServerError), http.StatusBadGateway},
		{providers.ErrCircuitOpen, http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			app := newTestApp(&stubExplorer{err: tc.err})
			resp, _ := post(t, app, "/api/v1/weather/geocode", `{"postcode":"SW1A 1AA"}`)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestSettingsRoute(t *testing.T) {
	app := newTestApp(&stubExplorer{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got explorer.Settings
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.True(t, got.IsFromServerConfig)
	assert.Equal(t, "key", got.OctopusAPIKey)
}

func TestParseTime(t *testing.T) {
	ts, err := parseTime("2024-03-01T10:00:00+01:00")
	require.NoError(t, err)
	assert.Equal(t, 9, ts.UTC().Hour())

	ts, err = parseTime("1704067200")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), ts)

	_, err = parseTime("01/02/2024")
	assert.Error(t, err)
}
