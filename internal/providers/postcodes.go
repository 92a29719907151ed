package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/i474232898/energy-weather-explorer/internal/weather"
)

// ErrPostcodeNotFound is returned when a geocoder does not know the postcode.
var ErrPostcodeNotFound = errors.New("postcode not found")

// PostcodesProvider resolves UK postcodes through postcodes.io.
type PostcodesProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewPostcodesProvider(client *http.Client, baseURL string) *PostcodesProvider {
	return &PostcodesProvider{
		name:    "postcodes",
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newBreaker("postcodes"),
	}
}

func (p *PostcodesProvider) Name() string {
	return p.name
}

func (p *PostcodesProvider) Resolve(ctx context.Context, postcode string) (weather.Location, error) {
	postcode = strings.TrimSpace(postcode)
	if postcode == "" {
		return weather.Location{}, fmt.Errorf("%w: empty postcode", ErrPostcodeNotFound)
	}

	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s/%s", p.baseURL, url.PathEscape(postcode))
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.name, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return weather.Location{}, fmt.Errorf("%w: %s", ErrPostcodeNotFound, postcode)
		}
		return weather.Location{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Status int `json:"status"`
		Result *struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Location{}, fmt.Errorf("decode postcode response: %w", err)
	}
	if payload.Result == nil {
		return weather.Location{}, fmt.Errorf("%w: %s", ErrPostcodeNotFound, postcode)
	}

	return weather.Location{
		Latitude:  payload.Result.Latitude,
		Longitude: payload.Result.Longitude,
	}, nil
}

// GoogleGeocoder resolves postcodes with the Google Maps geocoding API.
type GoogleGeocoder struct {
	country string
	lookup  func(geocoder.Address) (geocoder.Location, error)
}

// NewGoogleGeocoder configures the geocoder package's API key. The package
// keeps the key globally, so only one key per process is supported.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{
		country: "United Kingdom",
		lookup:  geocoder.Geocoding,
	}
}

func (g *GoogleGeocoder) Name() string {
	return "google"
}

func (g *GoogleGeocoder) Resolve(ctx context.Context, postcode string) (weather.Location, error) {
	if err := ctx.Err(); err != nil {
		return weather.Location{}, err
	}
	postcode = strings.TrimSpace(postcode)
	if postcode == "" {
		return weather.Location{}, fmt.Errorf("%w: empty postcode", ErrPostcodeNotFound)
	}

	loc, err := g.lookup(geocoder.Address{PostalCode: postcode, Country: g.country})
	if err != nil {
		return weather.Location{}, fmt.Errorf("google geocoding %s: %w", postcode, err)
	}
	return weather.Location{Latitude: loc.Latitude, Longitude: loc.Longitude}, nil
}

// Geocoder resolves a postcode to coordinates.
type Geocoder interface {
	Name() string
	Resolve(ctx context.Context, postcode string) (weather.Location, error)
}

// GeocoderChain tries each geocoder in turn and returns the first success.
type GeocoderChain []Geocoder

func (c GeocoderChain) Name() string {
	names := make([]string, len(c))
	for i, g := range c {
		names[i] = g.Name()
	}
	return strings.Join(names, ",")
}

func (c GeocoderChain) Resolve(ctx context.Context, postcode string) (weather.Location, error) {
	var errs []error
	for _, g := range c {
		loc, err := g.Resolve(ctx, postcode)
		if err == nil {
			return loc, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", g.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return weather.Location{}, fmt.Errorf("no geocoder configured")
	}
	return weather.Location{}, errors.Join(errs...)
}
