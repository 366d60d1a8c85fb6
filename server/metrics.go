package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the chunking endpoint.
type Metrics struct {
	Requests *prometheus.CounterVec
	Chunks   *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics registers the chunking metrics on the default registry.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chunker",
			Name:      "requests_total",
			Help:      "Chunking requests by strategy and status.",
		}, []string{"strategy", "status"}),
		Chunks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chunker",
			Name:      "chunks_total",
			Help:      "Chunks produced by strategy.",
		}, []string{"strategy"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "chunker",
			Name:      "request_duration_seconds",
			Help:      "Chunking request duration by strategy.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"strategy"}),
	}
	prometheus.MustRegister(m.Requests, m.Chunks, m.Duration)
	return m
}
