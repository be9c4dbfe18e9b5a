package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/i474232898/weather-readings-api/internal/common"
	"github.com/i474232898/weather-readings-api/internal/reading"
)

// MemoryStore is a concurrency-safe in-memory implementation of reading.Store.
// It backs tests and the no-database development mode; the write lock makes its
// uniqueness check atomic, so it enforces the same conflict semantics as the
// unique index in the Postgres store.
type MemoryStore struct {
	mu sync.RWMutex

	byID   map[string]reading.Reading
	byTime map[string]string // timestamp -> record id
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]reading.Reading),
		byTime: make(map[string]string),
	}
}

// ListAll returns every reading ordered by time ascending.
func (s *MemoryStore) ListAll(ctx context.Context) ([]reading.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked(), nil
}

// Latest returns the reading with the maximum timestamp.
func (s *MemoryStore) Latest(ctx context.Context) (reading.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest reading.Reading
	found := false
	for _, r := range s.byID {
		if !found || r.Time > latest.Time {
			latest = r
			found = true
		}
	}
	if !found {
		return reading.Reading{}, reading.ErrNotFound
	}
	return latest, nil
}

// ByDay returns all readings whose timestamp starts with the day prefix.
func (s *MemoryStore) ByDay(ctx context.Context, day string) ([]reading.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []reading.Reading
	for _, r := range s.sortedLocked() {
		if strings.HasPrefix(r.Time, day) {
			result = append(result, r)
		}
	}
	if len(result) == 0 {
		return nil, reading.ErrNotFound
	}
	return result, nil
}

// ByTimeRange returns readings with from <= time <= to, ascending.
func (s *MemoryStore) ByTimeRange(ctx context.Context, from, to string) ([]reading.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []reading.Reading
	for _, r := range s.sortedLocked() {
		if r.Time >= from && r.Time <= to {
			result = append(result, r)
		}
	}
	if len(result) == 0 {
		return nil, reading.ErrNotFound
	}
	return result, nil
}

// Search applies the filter bounds conjunctively, then sorts and limits.
func (s *MemoryStore) Search(ctx context.Context, f reading.Filter) ([]reading.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []reading.Reading
	for _, r := range s.byID {
		if !matches(r, f) {
			continue
		}
		result = append(result, r)
	}
	if len(result) == 0 {
		return nil, reading.ErrNotFound
	}

	sort.Slice(result, func(i, j int) bool {
		if f.SortDesc {
			return sortLess(result[j], result[i], f.SortField)
		}
		return sortLess(result[i], result[j], f.SortField)
	})

	if f.Limit > 0 && len(result) > f.Limit {
		result = result[:f.Limit]
	}
	return result, nil
}

// Stats aggregates temperature, humidity and precipitation over a time range.
func (s *MemoryStore) Stats(ctx context.Context, from, to string) (reading.RangeStats, error) {
	rs, err := s.ByTimeRange(ctx, from, to)
	if err != nil {
		return reading.RangeStats{}, err
	}

	stats := reading.RangeStats{
		MinTemperature: rs[0].Temperature,
		MaxTemperature: rs[0].Temperature,
		RecordCount:    len(rs),
	}
	var sumTemp, sumHumidity float64
	for _, r := range rs {
		sumTemp += r.Temperature
		sumHumidity += r.Humidity
		stats.TotalPrecipitation += r.Precipitation
		if r.Temperature < stats.MinTemperature {
			stats.MinTemperature = r.Temperature
		}
		if r.Temperature > stats.MaxTemperature {
			stats.MaxTemperature = r.Temperature
		}
	}
	n := float64(len(rs))
	stats.AvgTemperature = sumTemp / n
	stats.AvgHumidity = sumHumidity / n
	return stats, nil
}

// HourlyStats groups one day's readings by the hour substring of the timestamp.
func (s *MemoryStore) HourlyStats(ctx context.Context, day string) ([]reading.HourlyStat, error) {
	rs, err := s.ByDay(ctx, day)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		sumTemp, sumHumidity, sumPrecip float64
		count                           int
	}
	buckets := make(map[string]*bucket)
	for _, r := range rs {
		hour, ok := common.HourOf(r.Time)
		if !ok {
			continue
		}
		b := buckets[hour]
		if b == nil {
			b = &bucket{}
			buckets[hour] = b
		}
		b.sumTemp += r.Temperature
		b.sumHumidity += r.Humidity
		b.sumPrecip += r.Precipitation
		b.count++
	}
	if len(buckets) == 0 {
		return nil, reading.ErrNotFound
	}

	hours := make([]string, 0, len(buckets))
	for h := range buckets {
		hours = append(hours, h)
	}
	sort.Strings(hours)

	result := make([]reading.HourlyStat, 0, len(hours))
	for _, h := range hours {
		b := buckets[h]
		result = append(result, reading.HourlyStat{
			Hour:               h,
			AvgTemperature:     b.sumTemp / float64(b.count),
			AvgHumidity:        b.sumHumidity / float64(b.count),
			TotalPrecipitation: b.sumPrecip,
		})
	}
	return result, nil
}

// GetByID returns one reading by identifier.
func (s *MemoryStore) GetByID(ctx context.Context, id string) (reading.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byID[id]
	if !ok {
		return reading.Reading{}, reading.ErrNotFound
	}
	return r, nil
}

// GetByTime returns one reading by its exact timestamp.
func (s *MemoryStore) GetByTime(ctx context.Context, t string) (reading.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byTime[t]
	if !ok {
		return reading.Reading{}, reading.ErrNotFound
	}
	return s.byID[id], nil
}

// Insert stores a new reading, enforcing timestamp uniqueness.
func (s *MemoryStore) Insert(ctx context.Context, r reading.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byTime[r.Time]; taken {
		return reading.ErrTimeConflict
	}
	s.byID[r.ID] = r
	s.byTime[r.Time] = r.ID
	return nil
}

// Update replaces the stored reading with the same ID.
func (s *MemoryStore) Update(ctx context.Context, r reading.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[r.ID]
	if !ok {
		return reading.ErrNotFound
	}
	if r.Time != current.Time {
		if otherID, taken := s.byTime[r.Time]; taken && otherID != r.ID {
			return reading.ErrTimeConflict
		}
		delete(s.byTime, current.Time)
		s.byTime[r.Time] = r.ID
	}
	s.byID[r.ID] = r
	return nil
}

// Delete removes a reading by identifier.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok {
		return reading.ErrNotFound
	}
	delete(s.byID, id)
	delete(s.byTime, r.Time)
	return nil
}

// ReplaceAll wipes the collection and bulk-inserts the given readings.
// Per-record uniqueness is not re-checked; the input is assumed deduplicated.
func (s *MemoryStore) ReplaceAll(ctx context.Context, rs []reading.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID = make(map[string]reading.Reading, len(rs))
	s.byTime = make(map[string]string, len(rs))
	for _, r := range rs {
		s.byID[r.ID] = r
		s.byTime[r.Time] = r.ID
	}
	return nil
}

// sortedLocked returns all readings ordered by time ascending.
// Callers must hold at least the read lock.
func (s *MemoryStore) sortedLocked() []reading.Reading {
	result := make([]reading.Reading, 0, len(s.byID))
	for _, r := range s.byID {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Time < result[j].Time })
	return result
}

func matches(r reading.Reading, f reading.Filter) bool {
	if f.StartTime != "" && r.Time < f.StartTime {
		return false
	}
	if f.EndTime != "" && r.Time > f.EndTime {
		return false
	}
	if f.MinTemperature != nil && r.Temperature < *f.MinTemperature {
		return false
	}
	if f.MaxTemperature != nil && r.Temperature > *f.MaxTemperature {
		return false
	}
	if f.MinHumidity != nil && r.Humidity < *f.MinHumidity {
		return false
	}
	if f.MaxHumidity != nil && r.Humidity > *f.MaxHumidity {
		return false
	}
	if f.MinPrecipitation != nil && r.Precipitation < *f.MinPrecipitation {
		return false
	}
	if f.MaxPrecipitation != nil && r.Precipitation > *f.MaxPrecipitation {
		return false
	}
	return true
}

func sortLess(a, b reading.Reading, field string) bool {
	switch field {
	case "temperature_2m_C":
		return a.Temperature < b.Temperature
	case "relative_humidity_2m_percent":
		return a.Humidity < b.Humidity
	case "precipitation_mm":
		return a.Precipitation < b.Precipitation
	default:
		return a.Time < b.Time
	}
}
