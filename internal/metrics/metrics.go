// Package metrics provides Prometheus metrics for GraphQL operations and the
// HTTP endpoint.
package metrics

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	eventbus "github.com/hanpama/modgraph/internal/eventbus"
	events "github.com/hanpama/modgraph/internal/events"
)

// Collector holds all Prometheus metrics for modgraph.
type Collector struct {
	// Operation metrics
	OperationsTotal     *prometheus.CounterVec
	OperationDuration   *prometheus.HistogramVec
	OperationsInFlight  prometheus.Gauge
	SubscriptionResults *prometheus.CounterVec

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates a collector whose metrics are registered with reg.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "modgraph",
				Name:      "operations_total",
				Help:      "Total number of GraphQL operations executed",
			},
			[]string{"type", "outcome"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "modgraph",
				Name:      "operation_duration_seconds",
				Help:      "GraphQL operation duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"type"},
		),
		OperationsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "modgraph",
				Name:      "operations_in_flight",
				Help:      "Number of GraphQL operations currently executing",
			},
		),
		SubscriptionResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "modgraph",
				Name:      "subscription_results_total",
				Help:      "Total number of results delivered to subscribers",
			},
			[]string{"outcome"},
		),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "modgraph",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests served",
			},
			[]string{"method", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "modgraph",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
}

// Attach records the events published on the global bus in c.
func (c *Collector) Attach() (detach func()) {
	offs := []func(){
		eventbus.Subscribe(func(context.Context, events.GraphQLStart) {
			c.OperationsInFlight.Inc()
		}),
		eventbus.Subscribe(func(_ context.Context, e events.GraphQLFinish) {
			c.OperationsInFlight.Dec()
			c.OperationsTotal.WithLabelValues(operationType(e.OperationType), outcome(e.Errors)).Inc()
			c.OperationDuration.WithLabelValues(operationType(e.OperationType)).Observe(e.Duration.Seconds())
		}),
		eventbus.Subscribe(func(_ context.Context, e events.SubscriptionResult) {
			c.SubscriptionResults.WithLabelValues(outcome(e.Errors)).Inc()
		}),
		eventbus.Subscribe(func(_ context.Context, e events.HTTPFinish) {
			c.RequestsTotal.WithLabelValues(e.Request.Method, strconv.Itoa(e.Status)).Inc()
			c.RequestDuration.WithLabelValues(e.Request.Method).Observe(e.Duration.Seconds())
		}),
	}
	return func() {
		for _, off := range offs {
			off()
		}
	}
}

func operationType(t string) string {
	if t == "" {
		return "unknown"
	}
	return t
}

func outcome(errs []error) string {
	if len(errs) > 0 {
		return "error"
	}
	return "success"
}
