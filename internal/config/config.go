package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// AppConfig is the process configuration, read from the environment.
type AppConfig struct {
	Port      string `envconfig:"PORT" default:"8080"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"false"`

	// HTTPTimeout bounds a single outbound call; RequestTimeout bounds all
	// upstream work behind one API request.
	HTTPTimeout    time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s" validate:"gt=0"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s" validate:"gt=0"`

	Upstreams Upstreams

	// Weather cache retention.
	CacheMaxEntries int           `envconfig:"CACHE_MAX_ENTRIES" default:"64" validate:"gte=0"`
	CacheMaxAge     time.Duration `envconfig:"CACHE_MAX_AGE" default:"6h" validate:"gte=0"`

	// WarmInterval controls how often the home location's weather is refreshed.
	WarmInterval time.Duration `envconfig:"WARM_INTERVAL" default:"1h" validate:"gte=0"`

	Energy EnergySettings
}

// Upstreams holds the base URLs of the data providers.
type Upstreams struct {
	OctopusBaseURL       string `envconfig:"OCTOPUS_BASE_URL" default:"https://api.octopus.energy/v1" validate:"url"`
	OpenMeteoArchiveURL  string `envconfig:"OPENMETEO_ARCHIVE_URL" default:"https://archive-api.open-meteo.com/v1/archive" validate:"url"`
	PostcodesBaseURL     string `envconfig:"POSTCODES_BASE_URL" default:"https://api.postcodes.io/postcodes" validate:"url"`
	GoogleGeocoderAPIKey string `envconfig:"GOOGLE_GEOCODER_API_KEY"`
}

// EnergySettings is the optional server-side household configuration.
type EnergySettings struct {
	OctopusAPIKey     string  `envconfig:"ENERGY_OCTOPUS_API_KEY"`
	Postcode          string  `envconfig:"ENERGY_POSTCODE"`
	Latitude          float64 `envconfig:"ENERGY_LATITUDE" validate:"gte=-90,lte=90"`
	Longitude         float64 `envconfig:"ENERGY_LONGITUDE" validate:"gte=-180,lte=180"`
	ElectricityMPAN   string  `envconfig:"ENERGY_ELECTRICITY_MPAN"`
	ElectricitySerial string  `envconfig:"ENERGY_ELECTRICITY_SERIAL"`
	GasMPRN           string  `envconfig:"ENERGY_GAS_MPRN"`
	GasSerial         string  `envconfig:"ENERGY_GAS_SERIAL"`
}

var validate = validator.New()

// Load reads an optional .env file, then the environment, and validates the
// result. A missing .env file is not an error.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv populates the configuration from the process environment only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
