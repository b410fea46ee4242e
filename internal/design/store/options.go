package store

import (
	"time"

	"roomdesigner/internal/common/metrics"

	"github.com/rs/zerolog"
)

type Option func(*Store)

func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log.With().Str("component", "store").Logger() }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithClock replaces the timestamp source for createdAt/updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDSource replaces the random part of project and furniture ids.
func WithIDSource(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithSaveTimeout bounds a single snapshot write.
func WithSaveTimeout(d time.Duration) Option {
	return func(s *Store) { s.saveTimeout = d }
}
