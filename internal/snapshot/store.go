package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"wardwatch/internal/metrics"
	"wardwatch/internal/models"
)

// ErrHourOutOfRange is returned for hours outside [0,23]. This is a
// caller error and is never wrapped as a fetch failure.
var ErrHourOutOfRange = errors.New("hour must be between 0 and 23")

// ErrSuperseded is returned when a load resolves after a newer load was
// issued. The stale result is discarded, never installed.
var ErrSuperseded = errors.New("snapshot load superseded by a newer request")

// Loader fetches the full per-ward prediction set for one hour.
type Loader interface {
	Predictions(ctx context.Context, hour int) (*models.PredictionSnapshot, error)
}

// Store holds the current prediction snapshot and enforces the
// last-issued-wins ordering: each Load takes a generation number, and a
// result whose generation is no longer the newest is dropped on arrival.
// On failure the last good snapshot is preserved.
type Store struct {
	mu      sync.Mutex
	loader  Loader
	gen     uint64
	current *models.PredictionSnapshot
}

// NewStore creates a store backed by the given loader.
func NewStore(loader Loader) *Store {
	return &Store{loader: loader}
}

// Load fetches the snapshot for the given hour and installs it as the
// current snapshot unless a newer Load was issued in the meantime.
func (s *Store) Load(ctx context.Context, hour int) (*models.PredictionSnapshot, error) {
	if hour < 0 || hour > 23 {
		return nil, ErrHourOutOfRange
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	snap, err := s.loader.Predictions(ctx, hour)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		metrics.RecordSnapshotLoad("superseded")
		return nil, ErrSuperseded
	}
	if err != nil {
		// Keep the last good snapshot so the map never goes blank on a
		// transient failure.
		metrics.RecordSnapshotLoad("failed")
		return nil, fmt.Errorf("failed to load predictions for hour %d: %w", hour, err)
	}

	s.current = snap.Clone()
	metrics.RecordSnapshotLoad("applied")
	return snap.Clone(), nil
}

// Current returns a value copy of the current snapshot, or nil when no
// load has succeeded yet.
func (s *Store) Current() *models.PredictionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Hour returns the hour of the current snapshot and whether one exists.
func (s *Store) Hour() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return 0, false
	}
	return s.current.Hour, true
}
