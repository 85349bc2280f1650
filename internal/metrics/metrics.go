// Package metrics holds the Prometheus collectors of the booking service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleet_bookings_created_total",
		Help: "Total bookings created",
	})

	BookingTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_booking_transitions_total",
		Help: "Booking status transitions by source and target status",
	}, []string{"from", "to"})

	BookingConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_booking_conflicts_total",
		Help: "Booking writes rejected because the booking changed or the transition is illegal",
	}, []string{"operation"})

	PayoutsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleet_payouts_generated_total",
		Help: "Total payouts generated from completed bookings",
	})

	PayoutDuplicatesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleet_payout_duplicates_skipped_total",
		Help: "Payout generations skipped because the booking already had one",
	})

	PayoutsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleet_payouts_processed_total",
		Help: "Total payouts marked processed",
	})

	PaymentsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_payments_recorded_total",
		Help: "Payments recorded by resulting status",
	}, []string{"status"})

	EventPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_event_publish_failures_total",
		Help: "Domain events that could not be published",
	}, []string{"type"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fleet_http_request_duration_seconds",
		Help:    "HTTP request latency by route, method and status code",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)
