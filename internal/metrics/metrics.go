package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes of an accepted webhook.
const (
	OutcomeStructured = "structured"
	OutcomeFallback   = "fallback"
)

// Reasons a webhook is rejected.
const (
	ReasonBodyRead = "body_read"
	ReasonParse    = "parse"
	ReasonStore    = "store"
)

var (
	webhooksAccepted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_receiver_events_accepted_total",
		Help: "Webhook payloads stored, grouped by whether structured data was found",
	}, []string{"outcome"})

	webhooksRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_receiver_events_rejected_total",
		Help: "Webhook payloads rejected before storage, grouped by reason",
	}, []string{"reason"})

	eventsStored = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "webhook_receiver_events_stored",
		Help: "Number of events held in the event store",
	})

	publishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webhook_receiver_event_publish_failures_total",
		Help: "Stored events that could not be published to the event bus",
	})
)

// ObserveAccepted records a stored webhook.
func ObserveAccepted(structured bool) {
	outcome := OutcomeFallback
	if structured {
		outcome = OutcomeStructured
	}
	webhooksAccepted.WithLabelValues(outcome).Inc()
	eventsStored.Inc()
}

// ObserveRejected records a webhook that was not stored.
func ObserveRejected(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	webhooksRejected.WithLabelValues(reason).Inc()
}

// ObservePublishFailure records a failed event bus publication.
func ObservePublishFailure() {
	publishFailures.Inc()
}
