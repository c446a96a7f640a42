// Package metrics holds business counters shared by the API and the terminal client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "community_events"

var (
	EventsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_created_total",
		Help:      "Total number of events created",
	})

	EventsDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_deleted_total",
		Help:      "Total number of events deleted",
	})

	CommentsAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comments_added_total",
		Help:      "Total number of comments added",
	})

	AttendanceConfirmedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attendance_confirmed_total",
		Help:      "Total number of attendance confirmations",
	})

	SignInTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sign_in_total",
			Help:      "Total number of sign-in attempts",
		},
		[]string{"status"}, // success, invalid_credentials, unavailable, validation
	)

	LiveCountSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "live_count_subscribers",
		Help:      "Number of open live event count subscriptions",
	})

	DomainEventPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_event_publish_failures_total",
			Help:      "Domain events that could not be published",
		},
		[]string{"routing_key"},
	)
)
