package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP collectors are labelled by route pattern, never by raw path.
var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "webhook_receiver",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests handled, by method, route and status code.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "webhook_receiver",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Time spent handling HTTP requests.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"method", "route"})

	// Webhook bodies are read fully into memory, so their size is worth watching.
	httpRequestSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "webhook_receiver",
		Subsystem: "http",
		Name:      "request_size_bytes",
		Help:      "Declared request body size.",
		Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
	}, []string{"method", "route"})
)
