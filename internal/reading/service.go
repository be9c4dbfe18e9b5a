package reading

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/i474232898/weather-readings-api/internal/common"
)

const defaultSearchLimit = 100

// Service answers queries over the reading collection and mutates it while
// preserving the timestamp-uniqueness invariant.
type Service struct {
	store Store
	log   *slog.Logger
}

// NewService creates a new Service.
func NewService(store Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, log: log}
}

// ListAll returns every reading in store order.
func (s *Service) ListAll(ctx context.Context) ([]Reading, error) {
	return s.store.ListAll(ctx)
}

// Latest returns the reading with the maximum timestamp.
func (s *Service) Latest(ctx context.Context) (Reading, error) {
	return s.store.Latest(ctx)
}

// ByDay returns all readings for one calendar day (YYYY-MM-DD).
func (s *Service) ByDay(ctx context.Context, day string) ([]Reading, error) {
	return s.store.ByDay(ctx, day)
}

// ByRange returns readings between two days inclusive, ascending by time.
// The end bound is extended to the literal "T23:59" suffix so day-granularity
// inputs behave inclusively against minute-precision timestamps.
func (s *Service) ByRange(ctx context.Context, startDate, endDate string) ([]Reading, error) {
	return s.store.ByTimeRange(ctx, startDate, common.EndOfDay(endDate))
}

// Search applies optional numeric bounds, an optional date range, sorting and a
// result limit. Defaults: ascending by time, limit 100.
func (s *Service) Search(ctx context.Context, f Filter) ([]Reading, error) {
	if f.SortField == "" {
		f.SortField = "time"
	}
	if !SortFields[f.SortField] {
		return nil, ErrInvalidSort
	}
	if f.Limit <= 0 {
		f.Limit = defaultSearchLimit
	}
	if f.EndTime != "" {
		f.EndTime = common.EndOfDay(f.EndTime)
	}
	return s.store.Search(ctx, f)
}

// Stats aggregates over the same range predicate as ByRange.
func (s *Service) Stats(ctx context.Context, startDate, endDate string) (RangeStats, error) {
	return s.store.Stats(ctx, startDate, common.EndOfDay(endDate))
}

// HourlyStats groups one day's readings into hour-of-day buckets.
func (s *Service) HourlyStats(ctx context.Context, day string) ([]HourlyStat, error) {
	return s.store.HourlyStats(ctx, day)
}

// Get returns a single reading by identifier.
func (s *Service) Get(ctx context.Context, id string) (Reading, error) {
	return s.store.GetByID(ctx, id)
}

// Create persists a new reading, rejecting duplicate timestamps.
func (s *Service) Create(ctx context.Context, r Reading) (Reading, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	// Fast-path check; the store's uniqueness constraint remains authoritative
	// if a concurrent create wins the race between these two calls.
	if _, err := s.store.GetByTime(ctx, r.Time); err == nil {
		return Reading{}, ErrTimeConflict
	} else if !errors.Is(err, ErrNotFound) {
		return Reading{}, err
	}

	if err := s.store.Insert(ctx, r); err != nil {
		return Reading{}, err
	}
	return r, nil
}

// Update merges the patch into the stored reading. When the timestamp changes,
// it must not collide with any other record.
func (s *Service) Update(ctx context.Context, id string, p Patch) (Reading, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Reading{}, err
	}

	if p.Time != nil && *p.Time != current.Time {
		other, err := s.store.GetByTime(ctx, *p.Time)
		switch {
		case err == nil && other.ID != id:
			return Reading{}, ErrTimeConflict
		case err != nil && !errors.Is(err, ErrNotFound):
			return Reading{}, err
		}
	}

	updated := p.Apply(current)
	if err := s.store.Update(ctx, updated); err != nil {
		return Reading{}, err
	}
	return updated, nil
}

// Delete removes a reading by identifier.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Import wipes the collection and bulk-loads the given readings. The input is
// assumed pre-validated and pre-deduplicated, matching the original seed data.
func (s *Service) Import(ctx context.Context, rs []Reading) (int, error) {
	for i := range rs {
		if rs[i].ID == "" {
			rs[i].ID = uuid.NewString()
		}
	}
	if err := s.store.ReplaceAll(ctx, rs); err != nil {
		return 0, err
	}
	return len(rs), nil
}

// Ingest inserts readings fetched from the upstream source, skipping timestamps
// already present. Returns the number of newly stored readings.
func (s *Service) Ingest(ctx context.Context, rs []Reading) (int, error) {
	stored := 0
	for _, r := range rs {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		err := s.store.Insert(ctx, r)
		if errors.Is(err, ErrTimeConflict) {
			continue
		}
		if err != nil {
			return stored, err
		}
		stored++
	}
	if stored > 0 {
		s.log.Info("ingested new readings", "count", stored)
	}
	return stored, nil
}
