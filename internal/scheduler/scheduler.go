package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/i474232898/energy-weather-explorer/internal/weather"
)

// warmWindow is how many days of weather the warmer keeps cached.
const warmWindow = 7

// Cache is the part of weather.Service the warmer drives.
type Cache interface {
	Refresh(ctx context.Context, loc weather.Location, from, to time.Time) ([]weather.Reading, error)
	Prune() int
}

// Scheduler periodically refreshes the home location's recent weather so the
// first chart load is served from cache.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cache     Cache
	location  weather.Location
	interval  time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

// New creates a new Scheduler.
func New(location weather.Location, interval time.Duration, cache Cache, log zerolog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		cache:     cache,
		location:  location,
		interval:  interval,
		log:       log.With().Str("component", "scheduler").Logger(),
		now:       time.Now,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.location.IsZero() {
		s.log.Info().Msg("no home location configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = time.Hour
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.RunOnce(s.log.WithContext(ctx))
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce re-fetches the home location's weather for the last week and
// replaces the cached range, then drops expired entries. Only requests for
// exactly today-7..today (the default chart view) are served by this entry.
func (s *Scheduler) RunOnce(ctx context.Context) {
	to := s.now().UTC()
	from := to.AddDate(0, 0, -warmWindow)

	readings, err := s.cache.Refresh(ctx, s.location, from, to)
	if err != nil {
		s.log.Warn().Err(err).Str("location", s.location.Key()).Msg("weather warm-up failed")
	} else {
		s.log.Debug().Str("location", s.location.Key()).Int("readings", len(readings)).Msg("weather cache warmed")
	}

	if n := s.cache.Prune(); n > 0 {
		s.log.Debug().Int("pruned", n).Msg("expired weather ranges dropped")
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
