package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-readings-api/internal/observability/metrics"
	"github.com/i474232898/weather-readings-api/internal/reading"
)

// createRequest is the full payload for a new reading. Numeric fields are
// pointers so that zero values satisfy the required check; only a missing
// field fails validation.
type createRequest struct {
	Time                     string   `json:"time" validate:"required,datetime=2006-01-02T15:04"`
	Temperature              *float64 `json:"temperature_2m_C" validate:"required"`
	Humidity                 *float64 `json:"relative_humidity_2m_percent" validate:"required"`
	DewPoint                 *float64 `json:"dew_point_2m_C" validate:"required"`
	ApparentTemperature      *float64 `json:"apparent_temperature_C" validate:"required"`
	PrecipitationProbability *float64 `json:"precipitation_probability_percent" validate:"required"`
	Precipitation            *float64 `json:"precipitation_mm" validate:"required"`
	Rain                     *float64 `json:"rain_mm" validate:"required"`
	Showers                  *float64 `json:"showers_mm" validate:"required"`
	SurfacePressure          *float64 `json:"surface_pressure_hPa" validate:"required"`
	Visibility               *float64 `json:"visibility_m" validate:"required"`
	CloudCoverHigh           *float64 `json:"cloud_cover_high_percent" validate:"required"`
	CloudCoverMid            *float64 `json:"cloud_cover_mid_percent" validate:"required"`
	CloudCoverLow            *float64 `json:"cloud_cover_low_percent" validate:"required"`
}

func (r createRequest) toReading() reading.Reading {
	return reading.Reading{
		Time:                     r.Time,
		Temperature:              *r.Temperature,
		Humidity:                 *r.Humidity,
		DewPoint:                 *r.DewPoint,
		ApparentTemperature:      *r.ApparentTemperature,
		PrecipitationProbability: *r.PrecipitationProbability,
		Precipitation:            *r.Precipitation,
		Rain:                     *r.Rain,
		Showers:                  *r.Showers,
		SurfacePressure:          *r.SurfacePressure,
		Visibility:               *r.Visibility,
		CloudCoverHigh:           *r.CloudCoverHigh,
		CloudCoverMid:            *r.CloudCoverMid,
		CloudCoverLow:            *r.CloudCoverLow,
	}
}

// updateRequest is a partial payload; absent fields are left unchanged.
type updateRequest struct {
	Time                     *string  `json:"time" validate:"omitempty,datetime=2006-01-02T15:04"`
	Temperature              *float64 `json:"temperature_2m_C"`
	Humidity                 *float64 `json:"relative_humidity_2m_percent"`
	DewPoint                 *float64 `json:"dew_point_2m_C"`
	ApparentTemperature      *float64 `json:"apparent_temperature_C"`
	PrecipitationProbability *float64 `json:"precipitation_probability_percent"`
	Precipitation            *float64 `json:"precipitation_mm"`
	Rain                     *float64 `json:"rain_mm"`
	Showers                  *float64 `json:"showers_mm"`
	SurfacePressure          *float64 `json:"surface_pressure_hPa"`
	Visibility               *float64 `json:"visibility_m"`
	CloudCoverHigh           *float64 `json:"cloud_cover_high_percent"`
	CloudCoverMid            *float64 `json:"cloud_cover_mid_percent"`
	CloudCoverLow            *float64 `json:"cloud_cover_low_percent"`
}

func (r updateRequest) toPatch() reading.Patch {
	return reading.Patch{
		Time:                     r.Time,
		Temperature:              r.Temperature,
		Humidity:                 r.Humidity,
		DewPoint:                 r.DewPoint,
		ApparentTemperature:      r.ApparentTemperature,
		PrecipitationProbability: r.PrecipitationProbability,
		Precipitation:            r.Precipitation,
		Rain:                     r.Rain,
		Showers:                  r.Showers,
		SurfacePressure:          r.SurfacePressure,
		Visibility:               r.Visibility,
		CloudCoverHigh:           r.CloudCoverHigh,
		CloudCoverMid:            r.CloudCoverMid,
		CloudCoverLow:            r.CloudCoverLow,
	}
}

type loginRequest struct {
	Password string `json:"password" validate:"required"`
}

// decodeStrict parses the JSON body, rejecting unknown fields so that typos
// and stray attributes never reach the store.
func decodeStrict(c *fiber.Ctx, v any) error {
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	return nil
}

// dayParam validates the :date path parameter (YYYY-MM-DD).
func dayParam(c *fiber.Ctx) (string, error) {
	date := c.Params("date")
	if err := validate.Var(date, "required,datetime=2006-01-02"); err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "date must be in YYYY-MM-DD format")
	}
	return date, nil
}

// rangeParams reads the mandatory startDate/endDate query parameters.
func rangeParams(c *fiber.Ctx) (string, string, error) {
	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	if startDate == "" || endDate == "" {
		return "", "", fiber.NewError(fiber.StatusBadRequest, "Please provide startDate and endDate parameters")
	}
	if err := validate.Var(startDate, "datetime=2006-01-02"); err != nil {
		return "", "", fiber.NewError(fiber.StatusBadRequest, "startDate must be in YYYY-MM-DD format")
	}
	if err := validate.Var(endDate, "datetime=2006-01-02"); err != nil {
		return "", "", fiber.NewError(fiber.StatusBadRequest, "endDate must be in YYYY-MM-DD format")
	}
	return startDate, endDate, nil
}

// parseFilterQuery reads the optional bounds, date range, sort and limit.
func parseFilterQuery(c *fiber.Ctx) (reading.Filter, error) {
	var f reading.Filter
	var err error

	if f.MinTemperature, err = queryFloat(c, "minTemp"); err != nil {
		return f, err
	}
	if f.MaxTemperature, err = queryFloat(c, "maxTemp"); err != nil {
		return f, err
	}
	if f.MinHumidity, err = queryFloat(c, "minHumidity"); err != nil {
		return f, err
	}
	if f.MaxHumidity, err = queryFloat(c, "maxHumidity"); err != nil {
		return f, err
	}
	if f.MinPrecipitation, err = queryFloat(c, "minPrecipitation"); err != nil {
		return f, err
	}
	if f.MaxPrecipitation, err = queryFloat(c, "maxPrecipitation"); err != nil {
		return f, err
	}

	if startDate := c.Query("startDate"); startDate != "" {
		if err := validate.Var(startDate, "datetime=2006-01-02"); err != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, "startDate must be in YYYY-MM-DD format")
		}
		f.StartTime = startDate
	}
	if endDate := c.Query("endDate"); endDate != "" {
		if err := validate.Var(endDate, "datetime=2006-01-02"); err != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, "endDate must be in YYYY-MM-DD format")
		}
		f.EndTime = endDate
	}

	if sortParam := c.Query("sort"); sortParam != "" {
		field, direction, _ := strings.Cut(sortParam, ":")
		f.SortField = field
		f.SortDesc = direction == "desc"
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			return f, fiber.NewError(fiber.StatusBadRequest, "limit must be a positive integer")
		}
		f.Limit = limit
	}

	return f, nil
}

func queryFloat(c *fiber.Ctx, name string) (*float64, error) {
	s := c.Query(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, name+" must be a number")
	}
	return &v, nil
}

// Metrics returns a middleware recording request counts and latency per route.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		metrics.ObserveHTTPRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
