package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymbook_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymbook_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymbook_validations_total",
			Help: "Booking validations by outcome; check labels the violated check, or 'none'",
		},
		[]string{"outcome", "check"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymbook_bookings_total",
			Help: "Committed bookings by kind (oneoff or recurring)",
		},
		[]string{"kind"},
	)

	BookingDeletionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymbook_booking_deletions_total",
			Help: "Total number of deleted bookings",
		},
	)

	OccupancyBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gymbook_occupancy_build_duration_seconds",
			Help:    "Time spent materializing occupancy maps",
			Buckets: prometheus.DefBuckets,
		},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymbook_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordValidation(check string) {
	if check == "" {
		ValidationsTotal.WithLabelValues("pass", "none").Inc()
		return
	}
	ValidationsTotal.WithLabelValues("violation", check).Inc()
}

func RecordBooking(kind string) {
	BookingsTotal.WithLabelValues(kind).Inc()
}

func RecordBookingDeletion() {
	BookingDeletionsTotal.Inc()
}

func ObserveOccupancyBuild(seconds float64) {
	OccupancyBuildDuration.Observe(seconds)
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
