package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_appointments_created_total",
		Help: "Appointments booked successfully.",
	})

	BookingsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_appointments_cancelled_total",
		Help: "Appointments cancelled through the dashboard.",
	})

	BookingConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_slot_conflicts_total",
		Help: "Booking attempts rejected because the slot was already taken.",
	})

	SlotQueriesDegraded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_slot_queries_degraded_total",
		Help: "Availability queries that fell back to the full slot grid after a store error.",
	})

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "booking_http_request_duration_seconds",
			Help:    "HTTP request handling time in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// WithRequestDuration observes handling time per route pattern. Requests that
// match no route are labelled "unmatched" to keep cardinality bounded.
func WithRequestDuration(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
