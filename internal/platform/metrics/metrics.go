// Package metrics expone métricas Prometheus del servicio:
//   - http_request_total: contador por method, path y status
//   - http_request_duration_seconds: histograma por method y path
//   - http_request_in_flight: requests en curso
//   - timeline_*: tamaño y truncamientos de cada consolidación
//
// Se registran en el registry por defecto al inicializar el paquete.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	TimelineConsolidations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "timeline_consolidations_total",
			Help: "Timeline consolidations computed",
		},
	)

	TimelineItems = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "timeline_items",
			Help:    "Timeline items per consolidation",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	TimelineTruncated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "timeline_truncated_items_total",
			Help: "Timeline items cut short by a later prescription of the same medication",
		},
	)

	TimelineDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "timeline_consolidation_duration_seconds",
			Help:    "Time spent consolidating one patient timeline",
			Buckets: []float64{.00001, .0001, .0005, .001, .005, .01, .05},
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(TimelineConsolidations)
	prometheus.MustRegister(TimelineItems)
	prometheus.MustRegister(TimelineTruncated)
	prometheus.MustRegister(TimelineDuration)
}

// TimelineRecorder publica las consolidaciones en los vectores de arriba.
type TimelineRecorder struct{}

func (TimelineRecorder) ObserveConsolidation(courses, items, truncated int, elapsed time.Duration) {
	TimelineConsolidations.Inc()
	TimelineItems.Observe(float64(items))
	TimelineTruncated.Add(float64(truncated))
	TimelineDuration.Observe(elapsed.Seconds())
}
