package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-readings-api/internal/reading"
)

// hourlyVariables are the Open-Meteo variables backing the Reading model,
// in the order the collection was originally exported with.
var hourlyVariables = []string{
	"temperature_2m",
	"relative_humidity_2m",
	"dew_point_2m",
	"apparent_temperature",
	"precipitation_probability",
	"precipitation",
	"rain",
	"showers",
	"surface_pressure",
	"visibility",
	"cloud_cover_high",
	"cloud_cover_mid",
	"cloud_cover_low",
}

// OpenMeteoClient fetches hourly readings for one station from Open-Meteo.
// Open-Meteo does not require an API key.
type OpenMeteoClient struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoClient creates a client with default resilience settings.
func NewOpenMeteoClient(client *http.Client) *OpenMeteoClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenMeteoClient{
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

// WithBaseURL overrides the API endpoint, for tests.
func (c *OpenMeteoClient) WithBaseURL(baseURL string) *OpenMeteoClient {
	c.baseURL = baseURL
	return c
}

type hourlyPayload struct {
	Hourly struct {
		Time                     []string  `json:"time"`
		Temperature              []float64 `json:"temperature_2m"`
		Humidity                 []float64 `json:"relative_humidity_2m"`
		DewPoint                 []float64 `json:"dew_point_2m"`
		ApparentTemperature      []float64 `json:"apparent_temperature"`
		PrecipitationProbability []float64 `json:"precipitation_probability"`
		Precipitation            []float64 `json:"precipitation"`
		Rain                     []float64 `json:"rain"`
		Showers                  []float64 `json:"showers"`
		SurfacePressure          []float64 `json:"surface_pressure"`
		Visibility               []float64 `json:"visibility"`
		CloudCoverHigh           []float64 `json:"cloud_cover_high"`
		CloudCoverMid            []float64 `json:"cloud_cover_mid"`
		CloudCoverLow            []float64 `json:"cloud_cover_low"`
	} `json:"hourly"`
}

// FetchHourly returns the hourly readings around now (the past day plus the
// current one) for the given coordinates.
func (c *OpenMeteoClient) FetchHourly(ctx context.Context, lat, lon float64) ([]reading.Reading, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", lat))
		values.Set("longitude", fmt.Sprintf("%f", lon))
		values.Set("hourly", strings.Join(hourlyVariables, ","))
		values.Set("past_days", "1")
		values.Set("forecast_days", "1")
		values.Set("timezone", "UTC")

		return http.NewRequest(http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload hourlyPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	h := payload.Hourly
	readings := make([]reading.Reading, 0, len(h.Time))
	for i, ts := range h.Time {
		// Skip hours for which any series is missing a value; the collection
		// never holds partial records.
		if i >= len(h.Temperature) || i >= len(h.Humidity) || i >= len(h.DewPoint) ||
			i >= len(h.ApparentTemperature) || i >= len(h.PrecipitationProbability) ||
			i >= len(h.Precipitation) || i >= len(h.Rain) || i >= len(h.Showers) ||
			i >= len(h.SurfacePressure) || i >= len(h.Visibility) ||
			i >= len(h.CloudCoverHigh) || i >= len(h.CloudCoverMid) || i >= len(h.CloudCoverLow) {
			break
		}

		readings = append(readings, reading.Reading{
			Time:                     ts,
			Temperature:              h.Temperature[i],
			Humidity:                 h.Humidity[i],
			DewPoint:                 h.DewPoint[i],
			ApparentTemperature:      h.ApparentTemperature[i],
			PrecipitationProbability: h.PrecipitationProbability[i],
			Precipitation:            h.Precipitation[i],
			Rain:                     h.Rain[i],
			Showers:                  h.Showers[i],
			SurfacePressure:          h.SurfacePressure[i],
			Visibility:               h.Visibility[i],
			CloudCoverHigh:           h.CloudCoverHigh[i],
			CloudCoverMid:            h.CloudCoverMid[i],
			CloudCoverLow:            h.CloudCoverLow[i],
		})
	}
	return readings, nil
}
