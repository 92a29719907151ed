package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/i474232898/energy-weather-explorer/internal/correlation"
	"github.com/i474232898/energy-weather-explorer/internal/energy"
	"github.com/i474232898/energy-weather-explorer/internal/explorer"
	"github.com/i474232898/energy-weather-explorer/internal/period"
	"github.com/i474232898/energy-weather-explorer/internal/providers"
	"github.com/i474232898/energy-weather-explorer/internal/weather"
)

var validate = validator.New()

// Explorer is the service behind the API.
type Explorer interface {
	Consumption(ctx context.Context, meters explorer.Meters, from, to time.Time, fuel *energy.FuelType) ([]energy.Reading, error)
	Periods(ctx context.Context, meters explorer.Meters, from, to time.Time, g period.Granularity, fuel *energy.FuelType) ([]energy.Comparison, error)
	Compare(ctx context.Context, meters explorer.Meters, g period.Granularity, startA, startB time.Time, fuel *energy.FuelType) (energy.PeriodComparison, error)
	Correlate(ctx context.Context, meters explorer.Meters, loc weather.Location, from, to time.Time, fuel *energy.FuelType) ([]correlation.Point, error)
	WeatherSummary(ctx context.Context, loc weather.Location, from, to time.Time, g period.Granularity) ([]weather.Summary, error)
	Geocode(ctx context.Context, postcode string) (weather.Location, error)
	Settings(ctx context.Context) explorer.Settings
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, svc Explorer) {
	v1 := app.Group("/api/v1")

	v1.Post("/energy/consumption", func(c *fiber.Ctx) error {
		var req consumptionRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		from, to, err := req.bounds()
		if err != nil {
			return err
		}
		fuel, err := parseFuel(req.FuelType)
		if err != nil {
			return err
		}

		readings, err := svc.Consumption(c.UserContext(), req.meters(), from, to, fuel)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(readings)
	})

	v1.Post("/energy/periods", func(c *fiber.Ctx) error {
		var req periodsRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		from, to, err := req.bounds()
		if err != nil {
			return err
		}
		fuel, err := parseFuel(req.FuelType)
		if err != nil {
			return err
		}
		g, err := parsePeriod(req.Period, "")
		if err != nil {
			return err
		}

		comparisons, err := svc.Periods(c.UserContext(), req.meters(), from, to, g, fuel)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(comparisons)
	})

	v1.Post("/energy/comparison", func(c *fiber.Ctx) error {
		var req comparisonRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		startA, err := parseTime(req.PeriodAStart)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "periodAStart: "+err.Error())
		}
		startB, err := parseTime(req.PeriodBStart)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "periodBStart: "+err.Error())
		}
		fuel, err := parseFuel(req.FuelType)
		if err != nil {
			return err
		}
		g, err := parsePeriod(req.Period, "")
		if err != nil {
			return err
		}
		if !energy.Comparable(g) {
			return fiber.NewError(fiber.StatusBadRequest, "period must be week, month or year")
		}

		result, err := svc.Compare(c.UserContext(), req.meters(), g, startA, startB, fuel)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(result)
	})

	v1.Post("/energy/correlation", func(c *fiber.Ctx) error {
		var req correlationRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		from, to, err := req.bounds()
		if err != nil {
			return err
		}
		fuel, err := parseFuel(req.FuelType)
		if err != nil {
			return err
		}

		points, err := svc.Correlate(c.UserContext(), req.meters(), req.location(), from, to, fuel)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(points)
	})

	v1.Post("/weather/summary", func(c *fiber.Ctx) error {
		var req weatherRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		from, to, err := req.bounds()
		if err != nil {
			return err
		}
		g, err := parsePeriod(req.Period, "day")
		if err != nil {
			return err
		}

		summaries, err := svc.WeatherSummary(c.UserContext(), req.location(), from, to, g)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(summaries)
	})

	v1.Post("/weather/geocode", func(c *fiber.Ctx) error {
		var req geocodeRequest
		if err := bind(c, &req); err != nil {
			return err
		}

		loc, err := svc.Geocode(c.UserContext(), req.Postcode)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"latitude":  loc.Latitude,
			"longitude": loc.Longitude,
		})
	})

	v1.Get("/settings", func(c *fiber.Ctx) error {
		return c.JSON(svc.Settings(c.UserContext()))
	})
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RequestContext puts the request-scoped logger on the user context and
// bounds all upstream work of a request by timeout.
func RequestContext(log zerolog.Logger, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqLog := log.With().
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("route", c.Path()).
			Logger()

		ctx := reqLog.WithContext(c.UserContext())
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// serviceError maps service and upstream errors to HTTP statuses.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, explorer.ErrInvalidRequest):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, providers.ErrPostcodeNotFound):
		return fiber.NewError(fiber.StatusNotFound, "postcode not found")
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusGatewayTimeout, "upstream request timed out")
	case errors.Is(err, providers.ErrCircuitOpen):
		return fiber.NewError(fiber.StatusServiceUnavailable, "upstream temporarily unavailable")
	}

	zerolog.Ctx(c.UserContext()).Error().Err(err).Msg("upstream request failed")
	return fiber.NewError(fiber.StatusBadGateway, "upstream request failed")
}

func bind(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func parseFuel(s string) (*energy.FuelType, error) {
	if s == "" {
		return nil, nil
	}
	fuel, err := energy.ParseFuelType(s)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return &fuel, nil
}

func parsePeriod(s, fallback string) (period.Granularity, error) {
	if s == "" {
		s = fallback
	}
	g, err := period.Parse(s)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return g, nil
}

// parseTime accepts RFC3339, a plain date or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse(time.DateOnly, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339, YYYY-MM-DD or unix seconds")
}
