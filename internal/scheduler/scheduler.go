package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-readings-api/internal/ingest"
	"github.com/i474232898/weather-readings-api/internal/observability/metrics"
	"github.com/i474232898/weather-readings-api/internal/reading"
)

// Scheduler periodically fetches hourly readings for the configured station
// and stores the ones not yet present.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *reading.Service
	client    *ingest.OpenMeteoClient
	lat, lon  float64
	interval  time.Duration
	log       *slog.Logger
}

// New creates a new Scheduler.
func New(service *reading.Service, client *ingest.OpenMeteoClient, lat, lon float64, interval time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		client:    client,
		lat:       lat,
		lon:       lon,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the periodic ingest job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		readings, err := s.client.FetchHourly(ctx, s.lat, s.lon)
		if err != nil {
			s.log.Error("ingest fetch failed", "error", err)
			metrics.ObserveIngestRun(err, 0)
			return
		}

		stored, err := s.service.Ingest(ctx, readings)
		if err != nil {
			s.log.Error("ingest store failed", "error", err, "stored", stored)
		}
		metrics.ObserveIngestRun(err, stored)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
