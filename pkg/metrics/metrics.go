// Package metrics holds the Prometheus collectors shared by the dialog hook and the fulfillment worker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Labels stay low-cardinality: no session, message or email values.
var (
	// DialogTurnsTotal counts code hook invocations by source and resulting directive.
	DialogTurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dining_dialog_turns_total",
		Help: "Total number of dialog code hook turns, by invocation source and result.",
	}, []string{"source", "result"})

	// RequestsEnqueuedTotal counts fulfillment requests written to the request queue.
	RequestsEnqueuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dining_requests_enqueued_total",
		Help: "Total number of fulfillment requests enqueued, by status.",
	}, []string{"status"})

	// FulfillmentItemsTotal counts processed queue messages by outcome.
	FulfillmentItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dining_fulfillment_items_total",
		Help: "Total number of queue messages processed by the fulfillment worker, by outcome.",
	}, []string{"outcome"})

	// FulfillmentBatchSize observes how many messages each invocation received.
	FulfillmentBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dining_fulfillment_batch_size",
		Help:    "Number of messages received per worker invocation.",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 10},
	})

	// PipelineStepSeconds observes latency of each fulfillment pipeline step.
	PipelineStepSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dining_pipeline_step_seconds",
		Help:    "Latency of fulfillment pipeline steps in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"step"})
)
