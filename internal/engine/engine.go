// Package engine applies economic events to the ledger.
//
// Every mutating operation runs inside one storage transaction: it reads the
// rows it needs, validates the request against them, and only then issues
// writes (balances, item counts and history rows). Either all of those writes
// are committed or none are.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/limbo/internal/ledger"
	"github.com/mmynk/limbo/internal/metrics"
	"github.com/mmynk/limbo/internal/storage"
)

// DefaultExpiryWeeks is used by Restock when no expiry is given.
const DefaultExpiryWeeks = 52

// Engine is the transaction engine. It is safe for concurrent use; the
// store serializes operations that touch the same rows.
type Engine struct {
	store       storage.Store
	now         func() time.Time
	newEventID  func() string
	metrics     *metrics.Metrics
	expiryWeeks int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the source of event dates.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMetrics records every operation in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithDefaultExpiryWeeks overrides DefaultExpiryWeeks.
func WithDefaultExpiryWeeks(weeks int) Option {
	return func(e *Engine) {
		if weeks > 0 {
			e.expiryWeeks = weeks
		}
	}
}

// New creates an Engine on top of store.
func New(store storage.Store, opts ...Option) *Engine {
	e := &Engine{
		store:       store,
		now:         time.Now,
		newEventID:  uuid.NewString,
		expiryWeeks: DefaultExpiryWeeks,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the store the engine writes to.
func (e *Engine) Store() storage.Store { return e.store }

// Now returns the engine clock's current time in UTC.
func (e *Engine) Now() time.Time { return e.now().UTC() }

// update runs fn as one atomic operation and records its outcome.
func (e *Engine) update(ctx context.Context, op string, fn func(tx storage.Tx) error) error {
	start := time.Now()
	err := e.store.Update(ctx, fn)
	e.observe(op, start, err)
	return err
}

// view runs fn against a read-only snapshot.
func (e *Engine) view(ctx context.Context, op string, fn func(tx storage.Tx) error) error {
	start := time.Now()
	err := e.store.View(ctx, fn)
	e.observe(op, start, err)
	return err
}

func (e *Engine) observe(op string, start time.Time, err error) {
	e.metrics.ObserveOperation(op, start, err)
	switch {
	case err == nil:
		slog.Debug("Engine operation succeeded", "operation", op, "duration", time.Since(start))
	case ledger.IsValidation(err) || ledger.IsNotFound(err) || ledger.IsConflict(err):
		slog.Warn("Engine operation rejected", "operation", op, "error", err)
	default:
		slog.Error("Engine operation failed", "operation", op, "error", err)
	}
}
