package observability

import (
	"context"
	"errors"

	"github.com/aretw0/tradecoin/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of one ledger.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	events     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// Registering twice with the same registry reuses the existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradecoin_operations_total",
				Help: "Ledger operations by name and outcome",
			},
			[]string{"op", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradecoin_operation_duration_seconds",
				Help:    "Duration of ledger operations, including persistence",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradecoin_events_total",
				Help: "Committed ledger events by ledger and name",
			},
			[]string{"ledger", "event"},
		),
	}

	var err error
	if m.operations, err = register(reg, m.operations); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	if m.events, err = register(reg, m.events); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Hooks returns the callbacks that feed the collectors.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnEvent: func(_ context.Context, e domain.Event) {
			m.events.WithLabelValues(string(e.Ledger), string(e.Name)).Inc()
		},
		OnOperation: func(_ context.Context, op domain.OperationEvent) {
			m.operations.WithLabelValues(op.Op, outcome(op.Err)).Inc()
			m.duration.WithLabelValues(op.Op).Observe(op.Duration.Seconds())
		},
	}
}

// outcome labels an operation result: "ok", or the kind of the rejection.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(domain.KindOf(err))
}
