package explorer

import (
	"github.com/i474232898/energy-weather-explorer/internal/common"
	"github.com/i474232898/energy-weather-explorer/internal/energy"
)

// Meters identifies the caller's Octopus account and meters. Blank fields fall
// back to the server-configured settings.
type Meters struct {
	OctopusAPIKey     string
	ElectricityMPAN   string
	ElectricitySerial string
	GasMPRN           string
	GasSerial         string
}

type meterPair struct {
	fuel  energy.FuelType
	meter energy.MeterConfiguration
}

// pairs returns the meters that can be queried. A meter is only usable when
// both its reference and serial are present; fuel narrows the set when non-nil.
func (m Meters) pairs(fuel *energy.FuelType) []meterPair {
	var out []meterPair
	if common.AllPresent(m.ElectricityMPAN, m.ElectricitySerial) && wants(fuel, energy.Electricity) {
		out = append(out, meterPair{
			fuel:  energy.Electricity,
			meter: energy.MeterConfiguration{MeterPointReference: m.ElectricityMPAN, SerialNumber: m.ElectricitySerial},
		})
	}
	if common.AllPresent(m.GasMPRN, m.GasSerial) && wants(fuel, energy.Gas) {
		out = append(out, meterPair{
			fuel:  energy.Gas,
			meter: energy.MeterConfiguration{MeterPointReference: m.GasMPRN, SerialNumber: m.GasSerial},
		})
	}
	return out
}

func wants(fuel *energy.FuelType, f energy.FuelType) bool {
	return fuel == nil || *fuel == f
}

// fuels returns the fuel filter as a list; nil means every fuel.
func fuels(fuel *energy.FuelType) []energy.FuelType {
	if fuel == nil {
		return energy.FuelTypes
	}
	return []energy.FuelType{*fuel}
}

// Settings is the household configuration served to the frontend.
type Settings struct {
	OctopusAPIKey      string                     `json:"octopusApiKey"`
	Postcode           string                     `json:"postcode"`
	Latitude           float64                    `json:"latitude"`
	Longitude          float64                    `json:"longitude"`
	ElectricityMeter   *energy.MeterConfiguration `json:"electricityMeter"`
	GasMeter           *energy.MeterConfiguration `json:"gasMeter"`
	IsFromServerConfig bool                       `json:"isFromServerConfig"`
}
