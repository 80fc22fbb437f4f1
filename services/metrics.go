package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts workflow transitions. A nil registerer yields unregistered collectors.
type Metrics struct {
	RequestsCreated      prometheus.Counter
	RequestResponses     *prometheus.CounterVec
	ConversationsOpened  prometheus.Counter
	MessagesPosted       prometheus.Counter
	MessagesMarkedRead   prometheus.Counter
	NotificationFailures prometheus.Counter
	Purges               *prometheus.CounterVec
	Exports              prometheus.Counter
}

// NewMetrics registers the messaging collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vent",
			Subsystem: "messaging",
			Name:      "requests_created_total",
			Help:      "Message requests created.",
		}),
		RequestResponses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vent",
			Subsystem: "messaging",
			Name:      "request_responses_total",
			Help:      "Message requests answered, by outcome.",
		}, []string{"status"}),
		ConversationsOpened: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vent",
			Subsystem: "messaging",
			Name:      "conversations_opened_total",
			Help:      "Conversations created by accepted requests.",
		}),
		MessagesPosted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vent",
			Subsystem: "messaging",
			Name:      "messages_posted_total",
			Help:      "Messages posted into conversations.",
		}),
		MessagesMarkedRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vent",
			Subsystem: "messaging",
			Name:      "messages_marked_read_total",
			Help:      "Messages flipped to read while listing a thread.",
		}),
		NotificationFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vent",
			Subsystem: "notifications",
			Name:      "failures_total",
			Help:      "Notifications that could not be stored.",
		}),
		Purges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vent",
			Subsystem: "admin",
			Name:      "purges_total",
			Help:      "Administrative deletions, by target.",
		}, []string{"target"}),
		Exports: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vent",
			Subsystem: "admin",
			Name:      "exports_total",
			Help:      "Messaging data exports written to object storage.",
		}),
	}
}
