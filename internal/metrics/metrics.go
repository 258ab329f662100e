// Package metrics exposes crawl counters in Prometheus format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Page outcomes
const (
	OutcomeOK        = "ok"
	OutcomeNoContent = "no_content"
	OutcomeError     = "error"
)

// Metrics holds the crawl collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry         *prometheus.Registry
	PagesTotal       *prometheus.CounterVec
	FetchDuration    prometheus.Histogram
	RecordsExtracted prometheus.Counter
	RecordsAppended  prometheus.Counter
	RecordsDuplicate prometheus.Counter
	SectionsDone     prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		PagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "listcrawl_pages_total",
				Help: "Listing pages processed, by outcome.",
			},
			[]string{"outcome"},
		),
		FetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "listcrawl_fetch_duration_seconds",
				Help:    "Time spent fetching one page, including content wait and settle delay.",
				Buckets: []float64{1, 2, 3, 5, 10, 15, 30, 60},
			},
		),
		RecordsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "listcrawl_records_extracted_total",
			Help: "Records extracted from listing pages.",
		}),
		RecordsAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "listcrawl_records_appended_total",
			Help: "Records written to the output file.",
		}),
		RecordsDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "listcrawl_records_duplicate_total",
			Help: "Records dropped because their link was already persisted.",
		}),
		SectionsDone: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "listcrawl_sections_completed_total",
			Help: "Sections crawled to their last page.",
		}),
	}
	m.registry.MustRegister(
		m.PagesTotal,
		m.FetchDuration,
		m.RecordsExtracted,
		m.RecordsAppended,
		m.RecordsDuplicate,
		m.SectionsDone,
	)
	return m
}

// ObservePage records one page attempt.
func (m *Metrics) ObservePage(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.PagesTotal.WithLabelValues(outcome).Inc()
	m.FetchDuration.Observe(d.Seconds())
}

// AddExtracted counts records read from pages.
func (m *Metrics) AddExtracted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RecordsExtracted.Add(float64(n))
}

// AddAppended counts records written to the output.
func (m *Metrics) AddAppended(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RecordsAppended.Add(float64(n))
}

// AddDuplicates counts records skipped as already known.
func (m *Metrics) AddDuplicates(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RecordsDuplicate.Add(float64(n))
}

// SectionDone counts a fully crawled section.
func (m *Metrics) SectionDone() {
	if m == nil {
		return
	}
	m.SectionsDone.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	go func() {
		log.Info().Str("addr", addr).Msg("Metrics endpoint listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn().Err(err).Str("addr", addr).Msg("Metrics endpoint stopped")
		}
	}()
}
