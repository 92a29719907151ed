package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kelvins/geocoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/energy-weather-explorer/internal/weather"
)

func TestPostcodesResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/postcodes/SW1A 1AA" {
			fmt.Fprint(w, `{"status":200,"result":{"postcode":"SW1A 1AA","latitude":51.501009,"longitude":-0.141588}}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"status":404,"error":"Postcode not found"}`)
	}))
	defer srv.Close()

	p := NewPostcodesProvider(srv.Client(), srv.URL+"/postcodes")

	loc, err := p.Resolve(context.Background(), " SW1A 1AA ")
	require.NoError(t, err)
	assert.InDelta(t, 51.501009, loc.Latitude, 1e-9)
	assert.InDelta(t, -0.141588, loc.Longitude, 1e-9)

	_, err = p.Resolve(context.Background(), "XX1 1XX")
	assert.ErrorIs(t, err, ErrPostcodeNotFound)

	_, err = p.Resolve(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrPostcodeNotFound)
}

type stubGeocoder struct {
	name string
	loc  weather.Location
	err  error
}

func (s stubGeocoder) Name() string { return s.name }

func (s stubGeocoder) Resolve(context.Context, string) (weather.Location, error) {
	return s.loc, s.err
}

func TestGeocoderChainFallsBack(t *testing.T) {
	want := weather.Location{Latitude: 1, Longitude: 2}
	chain := GeocoderChain{
		stubGeocoder{name: "a", err: ErrPostcodeNotFound},
		stubGeocoder{name: "b", loc: want},
	}

	got, err := chain.Resolve(context.Background(), "AB1 2CD")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "a,b", chain.Name())

	chain = GeocoderChain{stubGeocoder{name: "a", err: ErrPostcodeNotFound}}
	_, err = chain.Resolve(context.Background(), "AB1 2CD")
	assert.ErrorIs(t, err, ErrPostcodeNotFound)

	_, err = GeocoderChain{}.Resolve(context.Background(), "AB1 2CD")
	assert.Error(t, err)
}

func TestGoogleGeocoderResolve(t *testing.T) {
	g := &GoogleGeocoder{
		country: "United Kingdom",
		lookup: func(a geocoder.Address) (geocoder.Location, error) {
			if a.PostalCode != "M1 1AE" {
				return geocoder.Location{}, errors.New("zero results")
			}
			assert.Equal(t, "United Kingdom", a.Country)
			return geocoder.Location{Latitude: 53.48, Longitude: -2.24}, nil
		},
	}

	loc, err := g.Resolve(context.Background(), "M1 1AE")
	require.NoError(t, err)
	assert.InDelta(t, 53.48, loc.Latitude, 1e-9)

	_, err = g.Resolve(context.Background(), "ZZ9 9ZZ")
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Resolve(ctx, "M1 1AE")
	assert.ErrorIs(t, err, context.Canceled)
}
