package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	httpapi "github.com/i474232898/energy-weather-explorer/internal/api/http"
	"github.com/i474232898/energy-weather-explorer/internal/config"
	"github.com/i474232898/energy-weather-explorer/internal/explorer"
	"github.com/i474232898/energy-weather-explorer/internal/logging"
	"github.com/i474232898/energy-weather-explorer/internal/metrics"
	"github.com/i474232898/energy-weather-explorer/internal/providers"
	"github.com/i474232898/energy-weather-explorer/internal/scheduler"
	"github.com/i474232898/energy-weather-explorer/internal/store"
	"github.com/i474232898/energy-weather-explorer/internal/weather"
)

const serviceName = "energy-explorer"

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log := logging.New("info", false)
		log.Fatal().Err(err).Msg("failed to load config")
	}

	log := logging.New(cfg.LogLevel, cfg.LogPretty)

	// kWh values are rendered as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		log.Fatal().Err(err).Msg("failed to register metrics")
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Providers with resilience (backoff + circuit breaker).
	octopus := providers.NewOctopusProvider(httpClient, cfg.Upstreams.OctopusBaseURL)
	archive := providers.NewOpenMeteoProvider(httpClient, cfg.Upstreams.OpenMeteoArchiveURL)

	geocoders := providers.GeocoderChain{
		providers.NewPostcodesProvider(httpClient, cfg.Upstreams.PostcodesBaseURL),
	}
	if cfg.Upstreams.GoogleGeocoderAPIKey != "" {
		geocoders = append(geocoders, providers.NewGoogleGeocoder(cfg.Upstreams.GoogleGeocoderAPIKey))
	}

	// Archive responses are cached in memory with configured retention.
	memStore := store.NewMemoryStore(cfg.CacheMaxEntries, cfg.CacheMaxAge)
	weatherService := weather.NewService(memStore, archive)

	service := explorer.NewService(octopus, weatherService, geocoders, cfg.Energy)

	// Keep the home location's recent weather warm.
	home := weather.Location{Latitude: cfg.Energy.Latitude, Longitude: cfg.Energy.Longitude}
	sched := scheduler.New(home, cfg.WarmInterval, weatherService, log)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.RequestTimeout + 5*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(httpapi.RequestContext(log, cfg.RequestTimeout))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": serviceName,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, service)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("stopped")
}
