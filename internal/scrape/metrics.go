package scrape

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the scraper on a private
// registry so tests never collide on the global one.
type Metrics struct {
	Registry         *prometheus.Registry
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  prometheus.Histogram
	ItemsSavedTotal  prometheus.Counter
	RetriesTotal     prometheus.Counter
	ErrorsTotal      *prometheus.CounterVec
	StoresInFlight   prometheus.Gauge
	RunsStartedTotal prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_requests_total",
			Help: "Total HTTP requests issued by the scraper.",
		},
		[]string{"phase"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_request_duration_seconds",
			Help:    "HTTP request latency for scraper requests.",
			Buckets: prometheus.DefBuckets,
		},
	)
	itemsSaved := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_items_saved_total",
			Help: "Total scraped products persisted.",
		},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_retries_total",
			Help: "Total fetch retry attempts.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "Total scraper errors by type.",
		},
		[]string{"error_type"},
	)
	storesInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scraper_stores_in_flight",
			Help: "Store workers currently holding a semaphore slot.",
		},
	)
	runsStarted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_runs_started_total",
			Help: "Total scraping runs started.",
		},
	)

	registry.MustRegister(requests, requestDuration, itemsSaved, retries, errorsTotal, storesInFlight, runsStarted)

	return &Metrics{
		Registry:         registry,
		RequestsTotal:    requests,
		RequestDuration:  requestDuration,
		ItemsSavedTotal:  itemsSaved,
		RetriesTotal:     retries,
		ErrorsTotal:      errorsTotal,
		StoresInFlight:   storesInFlight,
		RunsStartedTotal: runsStarted,
	}
}

func (m *Metrics) IncRequest(phase string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(phase).Inc()
}

func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

func (m *Metrics) AddItemsSaved(n int) {
	if m == nil {
		return
	}
	m.ItemsSavedTotal.Add(float64(n))
}

func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
