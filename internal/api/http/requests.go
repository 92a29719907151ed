package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/energy-weather-explorer/internal/explorer"
	"github.com/i474232898/energy-weather-explorer/internal/weather"
)

// meterFields is shared by every energy request. Blank fields fall back to
// the server settings.
type meterFields struct {
	OctopusAPIKey     string `json:"octopusApiKey"`
	ElectricityMPAN   string `json:"electricityMpan"`
	ElectricitySerial string `json:"electricitySerial"`
	GasMPRN           string `json:"gasMprn"`
	GasSerial         string `json:"gasSerial"`
	FuelType          string `json:"fuelType"`
}

func (m meterFields) meters() explorer.Meters {
	return explorer.Meters{
		OctopusAPIKey:     m.OctopusAPIKey,
		ElectricityMPAN:   m.ElectricityMPAN,
		ElectricitySerial: m.ElectricitySerial,
		GasMPRN:           m.GasMPRN,
		GasSerial:         m.GasSerial,
	}
}

type window struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

func (w window) bounds() (time.Time, time.Time, error) {
	from, err := parseTime(w.From)
	if err != nil {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "from: "+err.Error())
	}
	to, err := parseTime(w.To)
	if err != nil {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "to: "+err.Error())
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "to must not be before from")
	}
	return from, to, nil
}

type coordinates struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

func (c coordinates) location() weather.Location {
	return weather.Location{Latitude: c.Latitude, Longitude: c.Longitude}
}

type consumptionRequest struct {
	meterFields
	window
}

type periodsRequest struct {
	meterFields
	window
	Period string `json:"period" validate:"required"`
}

type comparisonRequest struct {
	meterFields
	Period       string `json:"period" validate:"required"`
	PeriodAStart string `json:"periodAStart" validate:"required"`
	PeriodBStart string `json:"periodBStart" validate:"required"`
}

type correlationRequest struct {
	meterFields
	window
	coordinates
}

type weatherRequest struct {
	window
	coordinates
	Period string `json:"period"`
}

type geocodeRequest struct {
	Postcode string `json:"postcode" validate:"required"`
}
