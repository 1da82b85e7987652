package engine

import (
	"errors"
	"fmt"

	"github.com/defistate/pairpool-go/protocols/pair"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "pairpool"

// Metrics holds the engine's prometheus collectors.
type Metrics struct {
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	reserves          *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with registry. Collectors
// that are already registered are reused.
func NewMetrics(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "operations_total",
			Help:      "Pool operations by outcome.",
		}, []string{"operation", "result"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "operation_duration_seconds",
			Help:      "Time spent validating, pricing and committing an operation.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"operation"}),
		reserves: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "reserve",
			Help:      "Committed reserve per slot (approximate, float64).",
		}, []string{"slot"}),
	}

	var err error
	if m.operations, err = register(registry, m.operations); err != nil {
		return nil, err
	}
	if m.operationDuration, err = register(registry, m.operationDuration); err != nil {
		return nil, err
	}
	if m.reserves, err = register(registry, m.reserves); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](registry prometheus.Registerer, c C) (C, error) {
	if err := registry.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register metrics: %w", err)
	}
	return c, nil
}

func (m *Metrics) observe(op Operation, err error) {
	m.operations.WithLabelValues(string(op), resultLabel(err)).Inc()
}

func (m *Metrics) setReserves(pool pair.Pool) {
	if pool.Token1.Amount != nil {
		m.reserves.WithLabelValues(pair.Slot1.SlotName()).Set(pool.Token1.Amount.Float64())
	}
	if pool.Token2.Amount != nil {
		m.reserves.WithLabelValues(pair.Slot2.SlotName()).Set(pool.Token2.Amount.Float64())
	}
}
