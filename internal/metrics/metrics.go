package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	WebhooksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enroll_webhooks_total",
			Help: "Webhook deliveries by outcome",
		},
		[]string{"outcome"}, // created|duplicate|bad_request|invalid_fields|unauthorized|error
	)

	SMSTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enroll_sms_total",
			Help: "Confirmation SMS attempts by result",
		},
		[]string{"result"}, // sent|failed|skipped
	)

	registerOnce sync.Once
)

// MustRegister registers the collectors once; later calls are no-ops.
func MustRegister(r prometheus.Registerer) {
	registerOnce.Do(func() {
		r.MustRegister(
			WebhooksTotal,
			SMSTotal,
		)
	})
}
