package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		subscriptionsTotal,
		boostsTotal,
	)
}

var (
	subscriptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_total",
			Help: "Subscription lifecycle events by status (pending/authorized/paused/cancelled/expired/rolled_back).",
		},
		[]string{"status"},
	)

	boostsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boosts_total",
			Help: "Boost lifecycle events by status (pending/active/rolled_back).",
		},
		[]string{"status"},
	)
)

func IncSubscription(status string) {
	subscriptionsTotal.WithLabelValues(norm(status)).Inc()
}

func IncBoost(status string) {
	boostsTotal.WithLabelValues(norm(status)).Inc()
}
