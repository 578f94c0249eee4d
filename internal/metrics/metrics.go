package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides observability for the registry.
// Tracks record creation counts and reconciliation durations.
type Metrics struct {
	registry *prometheus.Registry

	RecordsCreated         *prometheus.CounterVec
	ValidationFailures     *prometheus.CounterVec
	AmbiguousAttributions  prometheus.Counter
	UserHistoryDuration    prometheus.Histogram
	PropertyDetailDuration prometheus.Histogram
}

// New creates a Metrics instance registered on its own registry, so several
// instances can coexist in one process.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RecordsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "estate_records_created_total",
			Help: "Total number of records created, by kind",
		}, []string{"kind"}),
		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "estate_validation_failures_total",
			Help: "Total number of rejected writes, by kind",
		}, []string{"kind"}),
		AmbiguousAttributions: factory.NewCounter(prometheus.CounterOpts{
			Name: "estate_ambiguous_attributions_total",
			Help: "Purchases whose seller could not be resolved to a single handover predecessor",
		}),
		UserHistoryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "estate_user_history_duration_seconds",
			Help:    "Duration of user history reconciliation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		PropertyDetailDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "estate_property_detail_duration_seconds",
			Help:    "Duration of property detail and rental timeline assembly",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementCreated records a successful insert of the given kind
func (m *Metrics) IncrementCreated(kind string) {
	m.RecordsCreated.WithLabelValues(kind).Inc()
}

// IncrementValidationFailure records a rejected write of the given kind
func (m *Metrics) IncrementValidationFailure(kind string) {
	m.ValidationFailures.WithLabelValues(kind).Inc()
}

// AddAmbiguous records n unresolved seller attributions
func (m *Metrics) AddAmbiguous(n int) {
	m.AmbiguousAttributions.Add(float64(n))
}

// ObserveUserHistory records the duration of a user history reconciliation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveUserHistory(start time.Time) {
	m.UserHistoryDuration.Observe(time.Since(start).Seconds())
}

// ObservePropertyDetail records the duration of a property detail lookup.
func (m *Metrics) ObservePropertyDetail(start time.Time) {
	m.PropertyDetailDuration.Observe(time.Since(start).Seconds())
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
