// Package metrics exposes Prometheus metrics for the grading service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HeatmapRequests = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "reviewloop",
		Subsystem: "grades",
		Name:      "heatmap_requests_total",
		Help:      "Heat-map report assemblies served.",
	})

	HeatmapDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "reviewloop",
		Subsystem: "grades",
		Name:      "heatmap_assembly_seconds",
		Help:      "Time spent assembling heat-map reports.",
		Buckets:   prometheus.DefBuckets,
	})

	GradeWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reviewloop",
		Subsystem: "grades",
		Name:      "grade_writes_total",
		Help:      "Grade override and submission-grade writes by kind.",
	}, []string{"kind"})

	AccessDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reviewloop",
		Subsystem: "grades",
		Name:      "access_denied_total",
		Help:      "Gate-predicate denials by action.",
	}, []string{"action"})
)

// ObserveHeatmap records one heat-map assembly.
func ObserveHeatmap(start time.Time) {
	HeatmapRequests.Inc()
	HeatmapDuration.Observe(time.Since(start).Seconds())
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler { return promhttp.Handler() }
