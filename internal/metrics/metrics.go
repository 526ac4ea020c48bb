// Package metrics defines the Prometheus collectors for fetching, ingestion
// and querying, and exposes an HTTP handler for scraping.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	FetchesTotal     *prometheus.CounterVec
	FetchDuration    *prometheus.HistogramVec
	RecordsIngested  *prometheus.CounterVec
	IngestDuration   *prometheus.HistogramVec
	IngestsTotal     *prometheus.CounterVec
	QueriesTotal     *prometheus.CounterVec
	PageChangesTotal prometheus.Counter
}

// New creates the collectors on their own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shelf_fetches_total",
				Help: "HTTP fetches by outcome (ok, not_modified, http_error, network_error, invalid_url).",
			},
			[]string{"outcome"},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shelf_fetch_duration_seconds",
				Help:    "HTTP fetch latency in seconds.",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"outcome"},
		),
		RecordsIngested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shelf_records_ingested_total",
				Help: "Article records produced by ingestion, by status.",
			},
			[]string{"source", "status"},
		),
		IngestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shelf_ingest_duration_seconds",
				Help:    "Wall time of a full ingestion run.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		IngestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shelf_ingests_total",
				Help: "Ingestion runs by result (ok, source_unavailable).",
			},
			[]string{"source", "result"},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shelf_queries_total",
				Help: "Query changes by result type (match, zero_result, empty).",
			},
			[]string{"result_type"},
		),
		PageChangesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "shelf_page_changes_total",
				Help: "Pagination control activations that changed the page.",
			},
		),
	}

	m.registry.MustRegister(
		m.FetchesTotal,
		m.FetchDuration,
		m.RecordsIngested,
		m.IngestDuration,
		m.IngestsTotal,
		m.QueriesTotal,
		m.PageChangesTotal,
	)

	return m
}

func (m *Metrics) ObserveFetch(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(outcome).Inc()
	m.FetchDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (m *Metrics) ObserveIngest(source string, ok, failed int, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.IngestDuration.WithLabelValues(source).Observe(d.Seconds())
	if err != nil {
		m.IngestsTotal.WithLabelValues(source, "source_unavailable").Inc()
		return
	}
	m.IngestsTotal.WithLabelValues(source, "ok").Inc()
	m.RecordsIngested.WithLabelValues(source, "ok").Add(float64(ok))
	m.RecordsIngested.WithLabelValues(source, "failed").Add(float64(failed))
}

func (m *Metrics) ObserveQuery(query string, matches int) {
	if m == nil {
		return
	}
	switch {
	case query == "":
		m.QueriesTotal.WithLabelValues("empty").Inc()
	case matches == 0:
		m.QueriesTotal.WithLabelValues("zero_result").Inc()
	default:
		m.QueriesTotal.WithLabelValues("match").Inc()
	}
}

func (m *Metrics) ObservePageChange() {
	if m == nil {
		return
	}
	m.PageChangesTotal.Inc()
}

// Registry exposes the underlying registry for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus scrape HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
