package config

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelvins/geocoder"
)

// AppConfig holds all runtime configuration, loaded from the environment.
type AppConfig struct {
	Port        string
	MetricsAddr string
	AppEnv      string
	LogLevel    slog.Level

	// DatabaseURL selects the Postgres store; when empty the in-memory
	// store is used instead (development only).
	DatabaseURL string

	AdminPassword string
	JWTSecret     string
	TokenTTL      time.Duration

	HTTPTimeout time.Duration

	// Ingest settings. Coordinates may be configured directly or resolved
	// from the station city/country via geocoding.
	IngestEnabled  bool
	FetchInterval  time.Duration
	StationLat     *float64
	StationLon     *float64
	StationCity    string
	StationCountry string
	GeocoderAPIKey string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.MetricsAddr = getenvDefault("METRICS_ADDR", ":9091")
	cfg.AppEnv = getenvDefault("APP_ENV", "development")
	cfg.LogLevel = parseLogLevel(getenvDefault("LOG_LEVEL", "info"))

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.AdminPassword == "" || cfg.JWTSecret == "" {
		return nil, errors.New("ADMIN_PASSWORD and JWT_SECRET must be set")
	}

	ttl, err := time.ParseDuration(getenvDefault("TOKEN_TTL", "12h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	cfg.TokenTTL = ttl

	httpTimeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = httpTimeout

	cfg.IngestEnabled = getenvBool("INGEST_ENABLED", false)

	interval, err := time.ParseDuration(getenvDefault("FETCH_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_INTERVAL: %w", err)
	}
	cfg.FetchInterval = interval

	cfg.StationLat = getenvFloat("STATION_LAT")
	cfg.StationLon = getenvFloat("STATION_LON")
	cfg.StationCity = os.Getenv("STATION_CITY")
	cfg.StationCountry = os.Getenv("STATION_COUNTRY")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	return cfg, nil
}

// StationCoordinates returns the ingest coordinates, geocoding the configured
// city when they are not set directly. Geocoding requires a Google API key.
func (c *AppConfig) StationCoordinates() (float64, float64, error) {
	if c.StationLat != nil && c.StationLon != nil {
		return *c.StationLat, *c.StationLon, nil
	}
	if c.StationCity == "" {
		return 0, 0, errors.New("set STATION_LAT/STATION_LON or STATION_CITY")
	}
	if c.GeocoderAPIKey == "" {
		return 0, 0, errors.New("GEOCODER_API_KEY required to geocode STATION_CITY")
	}

	geocoder.ApiKey = c.GeocoderAPIKey
	location, err := geocoder.Geocoding(geocoder.Address{
		City:    c.StationCity,
		Country: c.StationCountry,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("geocode %q: %w", c.StationCity, err)
	}
	return location.Latitude, location.Longitude, nil
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvFloat(key string) *float64 {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}
