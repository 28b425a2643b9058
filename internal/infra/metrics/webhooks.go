package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		webhookEventsTotal,
		webhookSignatureFailures,
	)
}

var (
	webhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mp_webhook_events_total",
			Help: "Inbound MercadoPago webhook events by topic and outcome (processed/skipped/deferred/duplicate).",
		},
		[]string{"topic", "outcome"},
	)

	webhookSignatureFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mp_webhook_signature_failures_total",
			Help: "Webhook requests rejected for an invalid x-signature.",
		},
	)
)

func IncWebhookEvent(topic, outcome string) {
	webhookEventsTotal.WithLabelValues(norm(topic), norm(outcome)).Inc()
}

func IncWebhookSignatureFailure() {
	webhookSignatureFailures.Inc()
}
