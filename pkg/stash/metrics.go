package stash

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	resultOK    = "ok"
	resultError = "error"

	changeDelivered = "delivered"
	changeDropped   = "dropped"
	changeIgnored   = "ignored"
)

type metrics struct {
	ops     *prometheus.CounterVec
	changes *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer, logger *zap.Logger) *metrics {
	m := &metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stash",
			Name:      "operations_total",
			Help:      "Stash operations by operation and result.",
		}, []string{"op", "result"}),
		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stash",
			Name:      "changes_total",
			Help:      "Host change events by outcome.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		m.ops = register(reg, m.ops, logger)
		m.changes = register(reg, m.changes, logger)
	}
	return m
}

// register reuses the collector of an earlier client on the same registry.
// Any other registration failure leaves c counting unexported, and is logged.
func register(reg prometheus.Registerer, c *prometheus.CounterVec, logger *zap.Logger) *prometheus.CounterVec {
	err := reg.Register(c)
	if err == nil {
		return c
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
			return existing
		}
	}
	logger.Error("register metrics failed, counters are not exported", zap.Error(err))
	return c
}

func (m *metrics) observe(op string, err error) {
	result := resultOK
	if err != nil && !errors.Is(err, ErrNotFound) {
		result = resultError
	}
	m.ops.WithLabelValues(op, result).Inc()
}

func (m *metrics) change(outcome string) {
	m.changes.WithLabelValues(outcome).Inc()
}
