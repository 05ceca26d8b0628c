// Package metrics exposes Prometheus collectors for the ledger.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/limbo/internal/ledger"
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Metrics records engine, sweep and reconciliation activity. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Engine metrics
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Expiry metrics
	ItemsExpired prometheus.Counter
	SweepRuns    *prometheus.CounterVec

	// Reconciliation metrics
	DriftedAccounts prometheus.Gauge
	Repairs         prometheus.Counter
}

// New creates a Metrics with its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "limbo",
			Subsystem: "engine",
			Name:      "operations_total",
			Help:      "Engine operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "limbo",
			Subsystem: "engine",
			Name:      "operation_duration_seconds",
			Help:      "Time spent in engine operations, including waiting for the store.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		ItemsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "limbo",
			Subsystem: "expiry",
			Name:      "items_removed_total",
			Help:      "Items removed by the expiry sweep.",
		}),
		SweepRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "limbo",
			Subsystem: "expiry",
			Name:      "sweeps_total",
			Help:      "Expiry sweeps by mode.",
		}, []string{"mode"}),

		DriftedAccounts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "limbo",
			Subsystem: "reconcile",
			Name:      "drifted_accounts",
			Help:      "Accounts whose stored balance disagreed with history in the last report.",
		}),
		Repairs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "limbo",
			Subsystem: "reconcile",
			Name:      "repaired_accounts_total",
			Help:      "Account balances overwritten by a confirmed repair.",
		}),
	}

	m.registry.MustRegister(
		m.Operations,
		m.OperationDuration,
		m.ItemsExpired,
		m.SweepRuns,
		m.DriftedAccounts,
		m.Repairs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveOperation records one engine call that started at start.
func (m *Metrics) ObserveOperation(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, Outcome(err)).Inc()
	m.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// ObserveSweep records a finished sweep.
func (m *Metrics) ObserveSweep(dryRun bool, removed int) {
	if m == nil {
		return
	}
	mode := "live"
	if dryRun {
		mode = "dry_run"
	} else {
		m.ItemsExpired.Add(float64(removed))
	}
	m.SweepRuns.WithLabelValues(mode).Inc()
}

// ObserveReport records how many accounts a reconciliation flagged.
func (m *Metrics) ObserveReport(drifted int) {
	if m == nil {
		return
	}
	m.DriftedAccounts.Set(float64(drifted))
}

// ObserveRepair records overwritten balances.
func (m *Metrics) ObserveRepair(repaired int) {
	if m == nil {
		return
	}
	m.Repairs.Add(float64(repaired))
	m.DriftedAccounts.Set(0)
}

// Outcome classifies err for the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ledger.ErrStorageFailure):
		return OutcomeFailed
	default:
		return OutcomeRejected
	}
}
