package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/i474232898/energy-weather-explorer/internal/weather"
)

// archiveTimezone matches the meter data, which Octopus reports in UK local time.
const archiveTimezone = "Europe/London"

// OpenMeteoProvider implements the weather.Provider interface for the Open-Meteo archive.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	zone    *time.Location
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client, baseURL string) *OpenMeteoProvider {
	zone, err := time.LoadLocation(archiveTimezone)
	if err != nil {
		zone = time.UTC
	}

	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		zone:    zone,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// History returns hourly readings for the dates from..to inclusive.
func (p *OpenMeteoProvider) History(ctx context.Context, loc weather.Location, from, to time.Time) ([]weather.Reading, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", loc.Latitude))
		values.Set("longitude", fmt.Sprintf("%f", loc.Longitude))
		values.Set("start_date", from.Format("2006-01-02"))
		values.Set("end_date", to.Format("2006-01-02"))
		values.Set("hourly", "temperature_2m,relative_humidity_2m,wind_speed_10m,sunshine_duration")
		values.Set("wind_speed_unit", "kmh")
		values.Set("timezone", archiveTimezone)

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.name, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Hourly struct {
			Time             []string   `json:"time"`
			Temperature      []*float64 `json:"temperature_2m"`
			RelativeHumidity []*float64 `json:"relative_humidity_2m"`
			WindSpeed        []*float64 `json:"wind_speed_10m"`
			SunshineDuration []*float64 `json:"sunshine_duration"`
		} `json:"hourly"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode archive response: %w", err)
	}

	h := payload.Hourly
	if h.Time == nil || h.Temperature == nil || h.RelativeHumidity == nil || h.WindSpeed == nil || h.SunshineDuration == nil {
		return nil, nil
	}

	n := min(len(h.Time), len(h.Temperature), len(h.RelativeHumidity), len(h.WindSpeed), len(h.SunshineDuration))
	readings := make([]weather.Reading, 0, n)
	skipped := 0
	for i := 0; i < n; i++ {
		// Recent hours the archive has not filled yet come back as null.
		temp, humidity, wind, sunshine := h.Temperature[i], h.RelativeHumidity[i], h.WindSpeed[i], h.SunshineDuration[i]
		if temp == nil || humidity == nil || wind == nil || sunshine == nil {
			skipped++
			continue
		}

		ts, err := time.ParseInLocation("2006-01-02T15:04", h.Time[i], p.zone)
		if err != nil {
			return nil, fmt.Errorf("archive time %q: %w", h.Time[i], err)
		}
		readings = append(readings, weather.Reading{
			Timestamp:               ts,
			TemperatureCelsius:      *temp,
			RelativeHumidityPercent: *humidity,
			WindSpeedKmh:            *wind,
			// The archive reports seconds.
			SunshineDurationMinutes: *sunshine / 60,
		})
	}
	if skipped > 0 {
		zerolog.Ctx(ctx).Debug().Str("provider", p.name).Int("skipped", skipped).Msg("archive hours without data dropped")
	}

	return readings, nil
}
