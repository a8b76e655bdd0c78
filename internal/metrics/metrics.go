// Package metrics exposes Prometheus instrumentation for the generation
// path: run outcomes, dedup effectiveness, and per-stage latency. Collectors
// register on the default registry; stillwriterd serves them on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stillwriter",
		Name:      "generations_total",
		Help:      "Screenplay generation attempts by outcome (ok or failure kind).",
	}, []string{"outcome"})

	dedupHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "stillwriter",
		Name:      "image_dedup_hits_total",
		Help:      "Uploads resolved to an already-stored canonical image.",
	})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "stillwriter",
		Name:      "pipeline_stage_duration_seconds",
		Help:      "Wall time per generation pipeline stage.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
	}, []string{"stage"})
)

// CountGeneration records one generation attempt. outcome is "ok" or an
// apperr kind label.
func CountGeneration(outcome string) {
	generations.WithLabelValues(outcome).Inc()
}

// CountDedupHit records an upload deduplicated against a stored image.
func CountDedupHit() {
	dedupHits.Inc()
}

// ObserveStage records the duration of one pipeline stage.
func ObserveStage(stage string, d time.Duration) {
	stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}
