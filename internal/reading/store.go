package reading

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when an identifier or a filter matches no readings.
	ErrNotFound = errors.New("weather record not found")

	// ErrTimeConflict is returned when a write would duplicate a timestamp.
	ErrTimeConflict = errors.New("weather record for this time already exists")

	// ErrInvalidSort is returned for sort fields outside SortFields.
	ErrInvalidSort = errors.New("unsupported sort field")
)

// Store is the contract both the Postgres store and the in-memory store satisfy.
//
// Timestamps are compared lexically everywhere; the fixed-width ISO prefix makes
// lexical order equal to chronological order. Stores must enforce timestamp
// uniqueness themselves and report violations as ErrTimeConflict; the service
// layer's existence checks are a fast path only.
type Store interface {
	ListAll(ctx context.Context) ([]Reading, error)
	Latest(ctx context.Context) (Reading, error)

	// ByDay returns readings whose time starts with the given day prefix.
	ByDay(ctx context.Context, day string) ([]Reading, error)

	// ByTimeRange returns readings with from <= time <= to, ascending.
	ByTimeRange(ctx context.Context, from, to string) ([]Reading, error)

	Search(ctx context.Context, f Filter) ([]Reading, error)
	Stats(ctx context.Context, from, to string) (RangeStats, error)
	HourlyStats(ctx context.Context, day string) ([]HourlyStat, error)

	GetByID(ctx context.Context, id string) (Reading, error)
	GetByTime(ctx context.Context, t string) (Reading, error)

	Insert(ctx context.Context, r Reading) error
	Update(ctx context.Context, r Reading) error
	Delete(ctx context.Context, id string) error

	// ReplaceAll wipes the collection and bulk-inserts the given readings.
	ReplaceAll(ctx context.Context, rs []Reading) error
}
