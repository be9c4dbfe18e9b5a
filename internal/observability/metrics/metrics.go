package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "weather_api_"

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	ingestRuns     *prometheus.CounterVec
	ingestReadings prometheus.Counter
)

// Init registers the service metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		)
		ingestRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_runs_total",
				Help: "Total scheduled ingest runs by result",
			},
			[]string{"result"},
		)
		ingestReadings = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_readings_total",
				Help: "Total readings stored by the scheduled ingest",
			},
		)
		prometheus.MustRegister(
			httpRequests,
			httpLatency,
			ingestRuns,
			ingestReadings,
		)
	})
}

// Handler exposes the default registry for the metrics listener.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if httpRequests == nil {
		return
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpLatency.WithLabelValues(route).Observe(duration.Seconds())
}

// ObserveIngestRun records one scheduler pass and how many readings it stored.
func ObserveIngestRun(err error, stored int) {
	if ingestRuns == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	ingestRuns.WithLabelValues(result).Inc()
	if stored > 0 {
		ingestReadings.Add(float64(stored))
	}
}
