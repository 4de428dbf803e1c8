package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gym_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	SubscriptionsPurchasedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_subscriptions_purchased_total",
			Help: "Total number of membership purchases",
		},
		[]string{"plan"},
	)

	PaymentsDecidedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_payments_decided_total",
			Help: "Total number of payments confirmed or rejected",
		},
		[]string{"outcome"},
	)

	WalkInSalesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_walkin_sales_total",
			Help: "Total number of walk-in passes sold",
		},
		[]string{"pass"},
	)

	KioskEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_kiosk_events_total",
			Help: "Kiosk interactions by outcome",
		},
		[]string{"outcome"},
	)

	MembershipsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_memberships_expired_total",
			Help: "Subscriptions moved to expired by the sweep",
		},
	)

	AuditWriteFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_audit_write_failures_total",
			Help: "Audit entries that could not be persisted",
		},
	)

	CatalogCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_catalog_cache_total",
			Help: "Catalog cache lookups by result",
		},
		[]string{"result"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gym_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordPurchase(plan string) {
	SubscriptionsPurchasedTotal.WithLabelValues(plan).Inc()
}

func RecordPaymentDecision(outcome string) {
	PaymentsDecidedTotal.WithLabelValues(outcome).Inc()
}

func RecordWalkInSale(pass string) {
	WalkInSalesTotal.WithLabelValues(pass).Inc()
}

func RecordKioskEvent(outcome string) {
	KioskEventsTotal.WithLabelValues(outcome).Inc()
}

func RecordExpired(n int) {
	MembershipsExpiredTotal.Add(float64(n))
}

func RecordAuditFailure() {
	AuditWriteFailuresTotal.Inc()
}

func RecordCacheLookup(result string) {
	CatalogCacheTotal.WithLabelValues(result).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
