package weather

import (
	"context"
	"time"
)

// Provider abstracts an hourly weather archive (e.g. Open-Meteo).
// from and to are calendar dates, both inclusive.
type Provider interface {
	Name() string
	History(ctx context.Context, loc Location, from, to time.Time) ([]Reading, error)
}

// Store is the contract the in-memory cache (and any future store) must satisfy.
type Store interface {
	Save(key string, readings []Reading)
	Get(key string) ([]Reading, error)
	Prune() int
}
