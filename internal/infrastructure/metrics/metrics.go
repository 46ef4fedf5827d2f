// Package metrics exposes Prometheus collectors for the HTTP layer and the
// cohort pipeline.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alem-hub/cognitive-insights/internal/domain/cohort"
)

// Registry owns every collector of the service. Each instance uses its own
// prometheus.Registry so tests can build as many as they need.
type Registry struct {
	reg *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	population   prometheus.Gauge
	personas     *prometheus.CounterVec
	submissions  *prometheus.CounterVec
	stored       prometheus.Gauge
}

// SubmissionCounter reports how many submissions are stored.
type SubmissionCounter interface {
	Count(ctx context.Context) (int, error)
}

// New creates and registers all collectors.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),

		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		population: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cohort_population_size",
			Help: "Size of the most recently built population.",
		}),

		personas: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cohort_persona_total",
			Help: "Classified records by persona across all built populations.",
		}, []string{"persona"}),

		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submissions_total",
			Help: "Accepted project submissions by lateness.",
		}, []string{"late"}),

		stored: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "submissions_stored",
			Help: "Submissions held by the submission store.",
		}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.httpRequests,
		r.httpDuration,
		r.population,
		r.personas,
		r.submissions,
		r.stored,
	)

	// Pre-create label sets so they show up as zero before the first event.
	for _, p := range cohort.AllPersonas {
		r.personas.WithLabelValues(p.String())
	}
	r.submissions.WithLabelValues("false")
	r.submissions.WithLabelValues("true")

	return r
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler serves the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// ObserveRequest records one served HTTP request.
func (r *Registry) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObservePopulation records the size and persona mix of a built population.
func (r *Registry) ObservePopulation(records []cohort.StudentRecord) {
	r.population.Set(float64(len(records)))
	for _, rec := range records {
		if rec.IsClassified() {
			r.personas.WithLabelValues(rec.Persona.String()).Inc()
		}
	}
}

// ObserveSubmission records an accepted submission.
func (r *Registry) ObserveSubmission(late bool) {
	r.submissions.WithLabelValues(strconv.FormatBool(late)).Inc()
	r.stored.Inc()
}

// SyncStoredSubmissions sets submissions_stored from the store, so a
// restart against a persistent store reports what was already there.
func (r *Registry) SyncStoredSubmissions(ctx context.Context, store SubmissionCounter) error {
	n, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count submissions: %w", err)
	}
	r.stored.Set(float64(n))
	return nil
}
