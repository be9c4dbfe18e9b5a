package store

import (
	"context"
	"errors"
	"testing"

	"github.com/i474232898/weather-readings-api/internal/reading"
)

func testReading(id, ts string, temp float64) reading.Reading {
	return reading.Reading{
		ID:              id,
		Time:            ts,
		Temperature:     temp,
		Humidity:        50,
		Precipitation:   1,
		SurfacePressure: 1013,
	}
}

func seed(t *testing.T, s *MemoryStore, rs ...reading.Reading) {
	t.Helper()
	for _, r := range rs {
		if err := s.Insert(context.Background(), r); err != nil {
			t.Fatalf("insert %s: %v", r.Time, err)
		}
	}
}

func TestInsertAndGetRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	want := reading.Reading{
		ID:                       "r1",
		Time:                     "2024-01-01T00:00",
		Temperature:              10.5,
		Humidity:                 80,
		DewPoint:                 7.2,
		ApparentTemperature:      9.1,
		PrecipitationProbability: 20,
		Precipitation:            0.3,
		Rain:                     0.2,
		Showers:                  0.1,
		SurfacePressure:          1012.4,
		Visibility:               24000,
		CloudCoverHigh:           10,
		CloudCoverMid:            35,
		CloudCoverLow:            60,
	}
	seed(t, s, want)

	got, err := s.GetByID(context.Background(), "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestInsertDuplicateTimeConflicts(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, testReading("r1", "2024-01-01T00:00", 10))

	err := s.Insert(context.Background(), testReading("r2", "2024-01-01T00:00", 11))
	if !errors.Is(err, reading.ErrTimeConflict) {
		t.Fatalf("expected ErrTimeConflict, got %v", err)
	}

	all, err := s.ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected exactly one stored record, got %d", len(all))
	}
}

func TestByTimeRangeSortedAndBounded(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s,
		testReading("r3", "2024-01-02T00:00", 30),
		testReading("r1", "2024-01-01T00:00", 10),
		testReading("r2", "2024-01-01T12:00", 20),
		testReading("r4", "2024-01-03T08:00", 40),
	)

	from, to := "2024-01-01", "2024-01-02T23:59"
	rs, err := s.ByTimeRange(context.Background(), from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rs) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(rs))
	}
	for i, r := range rs {
		if r.Time < from || r.Time > to {
			t.Errorf("reading %s outside range", r.Time)
		}
		if i > 0 && rs[i-1].Time > r.Time {
			t.Errorf("readings not ascending: %s before %s", rs[i-1].Time, r.Time)
		}
	}
}

func TestByTimeRangeEmptyIsNotFound(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, testReading("r1", "2024-01-01T00:00", 10))

	_, err := s.ByTimeRange(context.Background(), "2030-01-01", "2030-01-02T23:59")
	if !errors.Is(err, reading.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLatestEmptyStore(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Latest(context.Background())
	if !errors.Is(err, reading.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStatsBounds(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s,
		testReading("r1", "2024-01-01T00:00", 10),
		testReading("r2", "2024-01-01T12:00", 20),
		testReading("r3", "2024-01-02T00:00", 30),
	)

	stats, err := s.Stats(context.Background(), "2024-01-01", "2024-01-02T23:59")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.RecordCount != 3 {
		t.Fatalf("expected recordCount 3, got %d", stats.RecordCount)
	}
	if stats.AvgTemperature != 20 || stats.MinTemperature != 10 || stats.MaxTemperature != 30 {
		t.Fatalf("unexpected temperature stats: %+v", stats)
	}
	if stats.MinTemperature > stats.AvgTemperature || stats.AvgTemperature > stats.MaxTemperature {
		t.Fatalf("min <= avg <= max violated: %+v", stats)
	}
	if stats.TotalPrecipitation != 3 {
		t.Fatalf("expected totalPrecipitation 3, got %f", stats.TotalPrecipitation)
	}
}

func TestHourlyStatsBuckets(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s,
		testReading("r1", "2024-01-01T00:00", 10),
		testReading("r2", "2024-01-01T00:30", 14),
		testReading("r3", "2024-01-01T12:00", 20),
		testReading("r4", "2024-01-02T00:00", 99),
	)

	buckets, err := s.HourlyStats(context.Background(), "2024-01-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if buckets[0].Hour != "00" || buckets[1].Hour != "12" {
		t.Fatalf("unexpected bucket order: %+v", buckets)
	}
	if buckets[0].AvgTemperature != 12 {
		t.Fatalf("expected avg 12 for hour 00, got %f", buckets[0].AvgTemperature)
	}
	if buckets[0].TotalPrecipitation != 2 {
		t.Fatalf("expected precipitation 2 for hour 00, got %f", buckets[0].TotalPrecipitation)
	}
}

func TestDeleteNonexistentIsNotFound(t *testing.T) {
	s := NewMemoryStore()
	err := s.Delete(context.Background(), "missing")
	if !errors.Is(err, reading.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateTimeChangeConflicts(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s,
		testReading("r1", "2024-01-01T00:00", 10),
		testReading("r2", "2024-01-01T01:00", 11),
	)

	moved := testReading("r2", "2024-01-01T00:00", 11)
	if err := s.Update(context.Background(), moved); !errors.Is(err, reading.ErrTimeConflict) {
		t.Fatalf("expected ErrTimeConflict, got %v", err)
	}

	// Moving to a free slot releases the old timestamp.
	moved.Time = "2024-01-01T02:00"
	if err := s.Update(context.Background(), moved); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Insert(context.Background(), testReading("r3", "2024-01-01T01:00", 12)); err != nil {
		t.Fatalf("old timestamp still reserved: %v", err)
	}
}

func TestSearchFiltersSortAndLimit(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s,
		testReading("r1", "2024-01-01T00:00", 5),
		testReading("r2", "2024-01-01T01:00", 15),
		testReading("r3", "2024-01-01T02:00", 25),
		testReading("r4", "2024-01-01T03:00", 35),
	)

	min := 10.0
	rs, err := s.Search(context.Background(), reading.Filter{
		MinTemperature: &min,
		SortField:      "temperature_2m_C",
		SortDesc:       true,
		Limit:          2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rs) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(rs))
	}
	if rs[0].Temperature != 35 || rs[1].Temperature != 25 {
		t.Fatalf("unexpected sort order: %+v", rs)
	}
}

func TestReplaceAllWipesPreviousData(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, testReading("r1", "2024-01-01T00:00", 10))

	err := s.ReplaceAll(context.Background(), []reading.Reading{
		testReading("n1", "2025-06-01T00:00", 21),
		testReading("n2", "2025-06-01T01:00", 22),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.GetByID(context.Background(), "r1"); !errors.Is(err, reading.ErrNotFound) {
		t.Fatalf("expected old record gone, got %v", err)
	}
	all, err := s.ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 readings after import, got %d", len(all))
	}
}
