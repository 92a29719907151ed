package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/i474232898/energy-weather-explorer/internal/metrics"
	"github.com/i474232898/energy-weather-explorer/internal/period"
)

// Service fetches archive weather through a cache.
type Service struct {
	store    Store
	provider Provider
}

// NewService creates a new Service.
func NewService(store Store, provider Provider) *Service {
	return &Service{
		store:    store,
		provider: provider,
	}
}

// CacheKey identifies one archive request.
func CacheKey(loc Location, from, to time.Time) string {
	return loc.Key() + "|" + from.Format("2006-01-02") + "|" + to.Format("2006-01-02")
}

// History returns the hourly readings for the calendar dates from..to
// inclusive, serving repeated requests from the store.
func (s *Service) History(ctx context.Context, loc Location, from, to time.Time) ([]Reading, error) {
	log := zerolog.Ctx(ctx)

	from, to, err := s.window(from, to)
	if err != nil {
		return nil, err
	}

	key := CacheKey(loc, from, to)
	if s.store != nil {
		readings, err := s.store.Get(key)
		metrics.IncCacheLookup(err == nil)
		if err == nil {
			log.Debug().Str("key", key).Int("readings", len(readings)).Msg("weather cache hit")
			return readings, nil
		}
		if !errors.Is(err, ErrNotCached) {
			log.Warn().Err(err).Str("key", key).Msg("weather cache lookup failed")
		}
	}

	return s.fetch(ctx, loc, from, to)
}

// Refresh fetches the calendar dates from..to from the provider, skipping
// the cache lookup, and replaces the cached entry for that range.
func (s *Service) Refresh(ctx context.Context, loc Location, from, to time.Time) ([]Reading, error) {
	from, to, err := s.window(from, to)
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, loc, from, to)
}

// window normalises from..to to calendar dates.
func (s *Service) window(from, to time.Time) (time.Time, time.Time, error) {
	if s.provider == nil {
		return from, to, fmt.Errorf("no weather provider configured")
	}

	from, to = period.CalendarDate(from), period.CalendarDate(to)
	if to.Before(from) {
		return from, to, fmt.Errorf("weather range ends before it starts: %s > %s",
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	return from, to, nil
}

func (s *Service) fetch(ctx context.Context, loc Location, from, to time.Time) ([]Reading, error) {
	key := CacheKey(loc, from, to)

	readings, err := s.provider.History(ctx, loc, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s history for %s: %w", s.provider.Name(), loc.Key(), err)
	}

	if s.store != nil {
		s.store.Save(key, readings)
	}
	zerolog.Ctx(ctx).Debug().Str("provider", s.provider.Name()).Str("key", key).Int("readings", len(readings)).Msg("weather fetched")
	return readings, nil
}

// Summaries fetches the range and aggregates it by g.
func (s *Service) Summaries(ctx context.Context, loc Location, from, to time.Time, g period.Granularity) ([]Summary, error) {
	readings, err := s.History(ctx, loc, from, to)
	if err != nil {
		return nil, err
	}
	return AggregatePeriods(readings, g), nil
}

// Prune drops expired cache entries.
func (s *Service) Prune() int {
	if s.store == nil {
		return 0
	}
	return s.store.Prune()
}

// ErrNotCached is returned by stores that hold no entry for a key.
var ErrNotCached = errors.New("weather range not cached")
