package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/i474232898/weather-readings-api/internal/reading"
)

const uniqueViolation = "23505"

const readingColumns = `id, time, temperature_2m_c, relative_humidity_2m_percent,
	dew_point_2m_c, apparent_temperature_c, precipitation_probability_percent,
	precipitation_mm, rain_mm, showers_mm, surface_pressure_hpa, visibility_m,
	cloud_cover_high_percent, cloud_cover_mid_percent, cloud_cover_low_percent`

// sortColumns maps the JSON field names callers sort by to table columns.
var sortColumns = map[string]string{
	"time":                         "time",
	"temperature_2m_C":             "temperature_2m_c",
	"relative_humidity_2m_percent": "relative_humidity_2m_percent",
	"precipitation_mm":             "precipitation_mm",
}

// Store is the Postgres implementation of reading.Store.
//
// Timestamps are stored as TEXT and compared lexically so the range contract
// (startDate <= time <= endDate + "T23:59") holds byte for byte. The id column
// is TEXT as well: a malformed identifier simply matches no rows instead of
// failing a cast. The unique index on time is the authoritative uniqueness
// check; violations surface as reading.ErrTimeConflict.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the readings table and its unique time index.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS readings (
	id TEXT PRIMARY KEY,
	time TEXT NOT NULL,
	temperature_2m_c DOUBLE PRECISION NOT NULL,
	relative_humidity_2m_percent DOUBLE PRECISION NOT NULL,
	dew_point_2m_c DOUBLE PRECISION NOT NULL,
	apparent_temperature_c DOUBLE PRECISION NOT NULL,
	precipitation_probability_percent DOUBLE PRECISION NOT NULL,
	precipitation_mm DOUBLE PRECISION NOT NULL,
	rain_mm DOUBLE PRECISION NOT NULL,
	showers_mm DOUBLE PRECISION NOT NULL,
	surface_pressure_hpa DOUBLE PRECISION NOT NULL,
	visibility_m DOUBLE PRECISION NOT NULL,
	cloud_cover_high_percent DOUBLE PRECISION NOT NULL,
	cloud_cover_mid_percent DOUBLE PRECISION NOT NULL,
	cloud_cover_low_percent DOUBLE PRECISION NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS readings_time_key ON readings (time)`)
	return err
}

// ListAll returns every reading in store order.
func (s *Store) ListAll(ctx context.Context) ([]reading.Reading, error) {
	return s.queryReadings(ctx, fmt.Sprintf(`SELECT %s FROM readings`, readingColumns))
}

// Latest returns the reading with the maximum timestamp.
func (s *Store) Latest(ctx context.Context) (reading.Reading, error) {
	query := fmt.Sprintf(`SELECT %s FROM readings ORDER BY time DESC LIMIT 1`, readingColumns)
	return s.queryReading(ctx, query)
}

// ByDay returns all readings whose timestamp starts with the day prefix.
func (s *Store) ByDay(ctx context.Context, day string) ([]reading.Reading, error) {
	query := fmt.Sprintf(`SELECT %s FROM readings WHERE time LIKE $1 || '%%' ORDER BY time ASC`, readingColumns)
	rs, err := s.queryReadings(ctx, query, day)
	if err != nil {
		return nil, err
	}
	if len(rs) == 0 {
		return nil, reading.ErrNotFound
	}
	return rs, nil
}

// ByTimeRange returns readings with from <= time <= to, ascending.
func (s *Store) ByTimeRange(ctx context.Context, from, to string) ([]reading.Reading, error) {
	query := fmt.Sprintf(`SELECT %s FROM readings WHERE time >= $1 AND time <= $2 ORDER BY time ASC`, readingColumns)
	rs, err := s.queryReadings(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	if len(rs) == 0 {
		return nil, reading.ErrNotFound
	}
	return rs, nil
}

// Search builds a conjunctive WHERE clause from the filter bounds.
func (s *Store) Search(ctx context.Context, f reading.Filter) ([]reading.Reading, error) {
	sortCol, ok := sortColumns[f.SortField]
	if !ok {
		return nil, reading.ErrInvalidSort
	}
	direction := "ASC"
	if f.SortDesc {
		direction = "DESC"
	}

	var conds []string
	var args []any
	add := func(column, op string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s %s $%d", column, op, len(args)))
	}

	if f.StartTime != "" {
		add("time", ">=", f.StartTime)
	}
	if f.EndTime != "" {
		add("time", "<=", f.EndTime)
	}
	if f.MinTemperature != nil {
		add("temperature_2m_c", ">=", *f.MinTemperature)
	}
	if f.MaxTemperature != nil {
		add("temperature_2m_c", "<=", *f.MaxTemperature)
	}
	if f.MinHumidity != nil {
		add("relative_humidity_2m_percent", ">=", *f.MinHumidity)
	}
	if f.MaxHumidity != nil {
		add("relative_humidity_2m_percent", "<=", *f.MaxHumidity)
	}
	if f.MinPrecipitation != nil {
		add("precipitation_mm", ">=", *f.MinPrecipitation)
	}
	if f.MaxPrecipitation != nil {
		add("precipitation_mm", "<=", *f.MaxPrecipitation)
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, f.Limit)
	query := fmt.Sprintf(`SELECT %s FROM readings %s ORDER BY %s %s LIMIT $%d`,
		readingColumns, where, sortCol, direction, len(args))

	rs, err := s.queryReadings(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rs) == 0 {
		return nil, reading.ErrNotFound
	}
	return rs, nil
}

// Stats aggregates temperature, humidity and precipitation over a time range.
func (s *Store) Stats(ctx context.Context, from, to string) (reading.RangeStats, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT COUNT(*),
	AVG(temperature_2m_c), MIN(temperature_2m_c), MAX(temperature_2m_c),
	AVG(relative_humidity_2m_percent),
	COALESCE(SUM(precipitation_mm), 0)
FROM readings
WHERE time >= $1 AND time <= $2`, from, to)

	var stats reading.RangeStats
	var avgTemp, minTemp, maxTemp, avgHumidity sql.NullFloat64
	if err := row.Scan(&stats.RecordCount, &avgTemp, &minTemp, &maxTemp, &avgHumidity, &stats.TotalPrecipitation); err != nil {
		return reading.RangeStats{}, err
	}
	if stats.RecordCount == 0 {
		return reading.RangeStats{}, reading.ErrNotFound
	}
	stats.AvgTemperature = avgTemp.Float64
	stats.MinTemperature = minTemp.Float64
	stats.MaxTemperature = maxTemp.Float64
	stats.AvgHumidity = avgHumidity.Float64
	return stats, nil
}

// HourlyStats groups one day's readings by the hour substring of the timestamp.
// substr is 1-based, so characters 12-13 are the hour field of the ISO string.
func (s *Store) HourlyStats(ctx context.Context, day string) ([]reading.HourlyStat, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT substr(time, 12, 2) AS hour,
	AVG(temperature_2m_c),
	AVG(relative_humidity_2m_percent),
	SUM(precipitation_mm)
FROM readings
WHERE time LIKE $1 || '%'
GROUP BY hour
ORDER BY hour ASC`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []reading.HourlyStat
	for rows.Next() {
		var h reading.HourlyStat
		if err := rows.Scan(&h.Hour, &h.AvgTemperature, &h.AvgHumidity, &h.TotalPrecipitation); err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, reading.ErrNotFound
	}
	return result, nil
}

// GetByID returns one reading by identifier.
func (s *Store) GetByID(ctx context.Context, id string) (reading.Reading, error) {
	query := fmt.Sprintf(`SELECT %s FROM readings WHERE id = $1`, readingColumns)
	return s.queryReading(ctx, query, id)
}

// GetByTime returns one reading by its exact timestamp.
func (s *Store) GetByTime(ctx context.Context, t string) (reading.Reading, error) {
	query := fmt.Sprintf(`SELECT %s FROM readings WHERE time = $1`, readingColumns)
	return s.queryReading(ctx, query, t)
}

// Insert stores a new reading; the unique time index rejects duplicates.
func (s *Store) Insert(ctx context.Context, r reading.Reading) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
INSERT INTO readings (%s)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`, readingColumns),
		readingArgs(r)...)
	return mapConflict(err)
}

// Update rewrites the full row identified by r.ID.
func (s *Store) Update(ctx context.Context, r reading.Reading) error {
	result, err := s.db.ExecContext(ctx, `
UPDATE readings SET
	time = $2,
	temperature_2m_c = $3,
	relative_humidity_2m_percent = $4,
	dew_point_2m_c = $5,
	apparent_temperature_c = $6,
	precipitation_probability_percent = $7,
	precipitation_mm = $8,
	rain_mm = $9,
	showers_mm = $10,
	surface_pressure_hpa = $11,
	visibility_m = $12,
	cloud_cover_high_percent = $13,
	cloud_cover_mid_percent = $14,
	cloud_cover_low_percent = $15
WHERE id = $1`, readingArgs(r)...)
	if err != nil {
		return mapConflict(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return reading.ErrNotFound
	}
	return nil
}

// Delete removes a reading by identifier.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM readings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return reading.ErrNotFound
	}
	return nil
}

// ReplaceAll wipes the table and bulk-inserts the given readings in one
// transaction. Per-record uniqueness is not re-checked beyond the index itself;
// the input is assumed deduplicated.
func (s *Store) ReplaceAll(ctx context.Context, rs []reading.Reading) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM readings`); err != nil {
		_ = tx.Rollback()
		return err
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
INSERT INTO readings (%s)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`, readingColumns))
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range rs {
		if _, err := stmt.ExecContext(ctx, readingArgs(r)...); err != nil {
			_ = tx.Rollback()
			return mapConflict(err)
		}
	}

	return tx.Commit()
}

func (s *Store) queryReading(ctx context.Context, query string, args ...any) (reading.Reading, error) {
	var r reading.Reading
	err := s.db.QueryRowContext(ctx, query, args...).Scan(scanTargets(&r)...)
	if errors.Is(err, sql.ErrNoRows) {
		return reading.Reading{}, reading.ErrNotFound
	}
	if err != nil {
		return reading.Reading{}, err
	}
	return r, nil
}

func (s *Store) queryReadings(ctx context.Context, query string, args ...any) ([]reading.Reading, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []reading.Reading
	for rows.Next() {
		var r reading.Reading
		if err := rows.Scan(scanTargets(&r)...); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func readingArgs(r reading.Reading) []any {
	return []any{
		r.ID, r.Time, r.Temperature, r.Humidity, r.DewPoint, r.ApparentTemperature,
		r.PrecipitationProbability, r.Precipitation, r.Rain, r.Showers,
		r.SurfacePressure, r.Visibility, r.CloudCoverHigh, r.CloudCoverMid, r.CloudCoverLow,
	}
}

func scanTargets(r *reading.Reading) []any {
	return []any{
		&r.ID, &r.Time, &r.Temperature, &r.Humidity, &r.DewPoint, &r.ApparentTemperature,
		&r.PrecipitationProbability, &r.Precipitation, &r.Rain, &r.Showers,
		&r.SurfacePressure, &r.Visibility, &r.CloudCoverHigh, &r.CloudCoverMid, &r.CloudCoverLow,
	}
}

func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return reading.ErrTimeConflict
	}
	return err
}
