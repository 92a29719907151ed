package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/energy-weather-explorer/internal/weather"
)

func readings(n int) []weather.Reading {
	out := make([]weather.Reading, n)
	for i := range out {
		out[i].TemperatureCelsius = float64(i)
	}
	return out
}

func TestMemoryStoreSaveGet(t *testing.T) {
	s := NewMemoryStore(0, 0)

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, weather.ErrNotCached)

	s.Save("a", readings(3))
	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestMemoryStoreEvictsOldestByCount(t *testing.T) {
	s := NewMemoryStore(2, 0)
	s.Save("a", readings(1))
	s.Save("b", readings(1))
	s.Save("a", readings(2)) // refresh moves a to the back
	s.Save("c", readings(1))

	_, err := s.Get("b")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 2, s.Len())
}

func TestMemoryStoreAgeRetention(t *testing.T) {
	now := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(0, time.Hour)
	s.now = func() time.Time { return now }

	s.Save("old", readings(1))
	now = now.Add(45 * time.Minute)
	s.Save("new", readings(1))
	now = now.Add(30 * time.Minute)

	_, err := s.Get("old")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get("new")
	assert.NoError(t, err)

	assert.Equal(t, 1, s.Prune())
	assert.Equal(t, 1, s.Len())

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, s.Prune())
	assert.Equal(t, 0, s.Len())
}
