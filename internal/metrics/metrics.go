package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movestrong_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movestrong_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movestrong_bookings_total",
			Help: "Total number of class booking attempts by outcome",
		},
		[]string{"outcome"},
	)

	CancellationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movestrong_cancellations_total",
			Help: "Total number of booking cancellations by refund outcome",
		},
		[]string{"refunded"},
	)

	WaitlistJoinsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "movestrong_waitlist_joins_total",
			Help: "Total number of members placed on a class waitlist",
		},
	)

	WaitlistNotificationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "movestrong_waitlist_notifications_total",
			Help: "Total number of open-spot waitlist notifications",
		},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movestrong_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movestrong_email_queue_length",
			Help: "Current length of email queue",
		},
	)

	MembershipsGrantedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movestrong_memberships_granted_total",
			Help: "Total number of memberships granted",
		},
		[]string{"plan"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(outcome string) {
	BookingsTotal.WithLabelValues(outcome).Inc()
}

func RecordCancellation(refunded bool) {
	label := "no"
	if refunded {
		label = "yes"
	}
	CancellationsTotal.WithLabelValues(label).Inc()
}

func RecordWaitlistJoin() {
	WaitlistJoinsTotal.Inc()
}

func RecordWaitlistNotification() {
	WaitlistNotificationsTotal.Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}

func RecordMembershipGranted(plan string) {
	MembershipsGrantedTotal.WithLabelValues(plan).Inc()
}
