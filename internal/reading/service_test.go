package reading_test

import (
	"context"
	"errors"
	"testing"

	"github.com/i474232898/weather-readings-api/internal/reading"
	"github.com/i474232898/weather-readings-api/internal/store"
)

func newService() *reading.Service {
	return reading.NewService(store.NewMemoryStore(), nil)
}

func baseReading(ts string, temp float64) reading.Reading {
	return reading.Reading{
		Time:        ts,
		Temperature: temp,
		Humidity:    50,
	}
}

func TestCreateAssignsIDAndRejectsDuplicates(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, baseReading("2024-01-01T00:00", 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected a generated identifier")
	}

	_, err = svc.Create(ctx, baseReading("2024-01-01T00:00", 11))
	if !errors.Is(err, reading.ErrTimeConflict) {
		t.Fatalf("expected ErrTimeConflict, got %v", err)
	}
}

func TestByRangeAppliesEndOfDaySuffix(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	for _, r := range []reading.Reading{
		baseReading("2024-01-01T00:00", 10),
		baseReading("2024-01-01T23:59", 12),
		baseReading("2024-01-02T00:00", 30),
	} {
		if _, err := svc.Create(ctx, r); err != nil {
			t.Fatalf("create %s: %v", r.Time, err)
		}
	}

	// Same start and end day: the whole end day must be included.
	rs, err := svc.ByRange(ctx, "2024-01-01", "2024-01-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rs) != 2 {
		t.Fatalf("expected 2 readings on the end day, got %d", len(rs))
	}
}

func TestUpdateMergesOnlyProvidedFields(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, reading.Reading{
		Time:        "2024-01-01T00:00",
		Temperature: 10,
		Humidity:    80,
		Visibility:  24000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	temp := 99.5
	updated, err := svc.Update(ctx, created.ID, reading.Patch{Temperature: &temp})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Temperature != 99.5 {
		t.Fatalf("expected updated temperature, got %f", updated.Temperature)
	}
	if updated.Humidity != 80 || updated.Visibility != 24000 || updated.Time != "2024-01-01T00:00" {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
}

func TestUpdateTimeChangeChecksUniqueness(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	first, err := svc.Create(ctx, baseReading("2024-01-01T00:00", 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Create(ctx, baseReading("2024-01-01T01:00", 11))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	taken := first.Time
	if _, err := svc.Update(ctx, second.ID, reading.Patch{Time: &taken}); !errors.Is(err, reading.ErrTimeConflict) {
		t.Fatalf("expected ErrTimeConflict, got %v", err)
	}

	// Re-submitting a record's own timestamp is not a conflict.
	same := second.Time
	if _, err := svc.Update(ctx, second.ID, reading.Patch{Time: &same}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearchDefaultsAndSortValidation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, baseReading("2024-01-01T00:00", 10)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Search(ctx, reading.Filter{SortField: "surface_pressure_hPa"}); !errors.Is(err, reading.ErrInvalidSort) {
		t.Fatalf("expected ErrInvalidSort, got %v", err)
	}

	rs, err := svc.Search(ctx, reading.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rs) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(rs))
	}
}

func TestIngestSkipsExistingTimestamps(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, baseReading("2024-01-01T00:00", 10)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, err := svc.Ingest(ctx, []reading.Reading{
		baseReading("2024-01-01T00:00", 10),
		baseReading("2024-01-01T01:00", 11),
		baseReading("2024-01-01T02:00", 12),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored != 2 {
		t.Fatalf("expected 2 new readings, got %d", stored)
	}
}

func TestImportReplacesCollection(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, baseReading("2020-01-01T00:00", 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count, err := svc.Import(ctx, []reading.Reading{
		baseReading("2024-01-01T00:00", 10),
		baseReading("2024-01-01T01:00", 11),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 imported readings, got %d", count)
	}

	all, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 readings after import, got %d", len(all))
	}
	for _, r := range all {
		if r.ID == "" {
			t.Fatalf("imported reading missing identifier: %+v", r)
		}
	}
}

func TestEndToEndScenario(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	for _, r := range []reading.Reading{
		baseReading("2024-01-01T00:00", 10),
		baseReading("2024-01-01T12:00", 20),
		baseReading("2024-01-02T00:00", 30),
	} {
		if _, err := svc.Create(ctx, r); err != nil {
			t.Fatalf("create %s: %v", r.Time, err)
		}
	}

	day, err := svc.ByDay(ctx, "2024-01-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(day) != 2 {
		t.Fatalf("expected 2 readings for 2024-01-01, got %d", len(day))
	}

	ranged, err := svc.ByRange(ctx, "2024-01-01", "2024-01-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranged) != 2 {
		t.Fatalf("expected 2 readings in range, got %d", len(ranged))
	}

	stats, err := svc.Stats(ctx, "2024-01-01", "2024-01-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.AvgTemperature != 20 || stats.MinTemperature != 10 || stats.MaxTemperature != 30 || stats.RecordCount != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
