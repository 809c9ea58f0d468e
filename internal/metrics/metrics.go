package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "unilodge"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		},
		[]string{"route", "method", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	bookingEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_events_total",
			Help:      "Booking lifecycle transitions by event.",
		},
		[]string{"event"},
	)

	requestDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_request_decisions_total",
			Help:      "Booking request outcomes (created, approved, rejected).",
		},
		[]string{"outcome"},
	)

	bookingConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Booking attempts refused because the dates overlap, by channel.",
		},
		[]string{"channel"},
	)

	notificationsPurged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_purged_total",
			Help:      "Expired notifications removed by the purge job.",
		},
	)

	rateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests refused by the per-IP limiter.",
		},
		[]string{"route"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			bookingEvents,
			requestDecisions,
			bookingConflicts,
			notificationsPurged,
			rateLimited,
		)
	})
}

// ObserveHTTP records one served request
func ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// IncBookingEvent counts a booking transition such as "created" or "paid"
func IncBookingEvent(event string) {
	bookingEvents.WithLabelValues(event).Inc()
}

// IncRequestDecision counts a booking request outcome
func IncRequestDecision(outcome string) {
	requestDecisions.WithLabelValues(outcome).Inc()
}

// IncConflict counts an overlap refusal on the "direct" or "approval" channel
func IncConflict(channel string) {
	bookingConflicts.WithLabelValues(channel).Inc()
}

// AddNotificationsPurged adds n purged notifications
func AddNotificationsPurged(n int64) {
	notificationsPurged.Add(float64(n))
}

// IncRateLimited counts a limiter refusal
func IncRateLimited(route string) {
	rateLimited.WithLabelValues(route).Inc()
}
