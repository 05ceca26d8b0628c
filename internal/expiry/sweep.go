// Package expiry removes items past their expiry date.
//
// A sweep never deletes silently: every removed item leaves one ExpiryEvent
// per seller. Each item is swept in its own transaction, so an interrupted
// sweep leaves every item either fully swept or untouched.
package expiry

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/limbo/internal/ledger"
	"github.com/mmynk/limbo/internal/metrics"
	"github.com/mmynk/limbo/internal/models"
	"github.com/mmynk/limbo/internal/storage"
)

// Options controls a sweep.
type Options struct {
	// DryRun reports what would be removed without writing anything.
	DryRun bool
}

// Removal is one expired item.
type Removal struct {
	EventID string // empty on a dry run
	Item    models.Item
	Sellers []models.SellerAssignment
}

// Result lists what a sweep removed, or would remove on a dry run.
type Result struct {
	Date    time.Time
	DryRun  bool
	Removed []Removal
}

// Sweeper finds and removes expired items.
type Sweeper struct {
	store   storage.Store
	now     func() time.Time
	metrics *metrics.Metrics
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithClock sets what "now" means for a sweep.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) { s.now = now }
}

// WithMetrics records sweeps in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sweeper) { s.metrics = m }
}

// NewSweeper creates a Sweeper.
func NewSweeper(store storage.Store, opts ...Option) *Sweeper {
	s := &Sweeper{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sweep removes every item whose expiry date is before now. On error the
// items already swept stay swept and are listed in the result.
func (s *Sweeper) Sweep(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{Date: s.now().UTC(), DryRun: opts.DryRun}

	var candidates []Removal
	err := s.store.View(ctx, func(tx storage.Tx) error {
		items, err := tx.Items().ListExpired(ctx, result.Date)
		if err != nil {
			return err
		}
		for _, item := range items {
			sellers, err := tx.Sellers().ListByItem(ctx, item.Name)
			if err != nil {
				return err
			}
			candidates = append(candidates, Removal{Item: item, Sellers: sellers})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		result.Removed = candidates
		for _, c := range candidates {
			slog.Info("Item would expire", "item", c.Item.Name, "count", c.Item.Count, "expiry_date", c.Item.ExpiryDate)
		}
		s.metrics.ObserveSweep(true, len(candidates))
		return result, nil
	}

	for _, c := range candidates {
		removal, err := s.remove(ctx, c.Item.Name, result.Date)
		if err != nil {
			s.metrics.ObserveSweep(false, len(result.Removed))
			return result, err
		}
		if removal == nil {
			continue
		}
		result.Removed = append(result.Removed, *removal)
		slog.Info("Item expired", "item", removal.Item.Name, "count", removal.Item.Count, "sellers", len(removal.Sellers))
	}
	s.metrics.ObserveSweep(false, len(result.Removed))
	return result, nil
}

// remove sweeps one item. It returns nil if the item was sold out or
// replaced since it was listed.
func (s *Sweeper) remove(ctx context.Context, name string, now time.Time) (*Removal, error) {
	var removal *Removal
	err := s.store.Update(ctx, func(tx storage.Tx) error {
		item, err := tx.Items().Get(ctx, name)
		if ledger.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		if !item.Expired(now) {
			return nil
		}
		sellers, err := tx.Sellers().ListByItem(ctx, name)
		if err != nil {
			return err
		}

		eventID := uuid.NewString()
		for _, a := range sellers {
			err := tx.ExpiryEvents().Insert(ctx, &models.ExpiryEvent{
				EventID:     eventID,
				ItemName:    item.Name,
				Date:        now,
				StockDate:   item.StockDate,
				ExpiryDate:  item.ExpiryDate,
				Seller:      a.Seller,
				ProfitSplit: a.ProfitSplit,
				PriceEach:   item.UnitPrice,
				Count:       item.Count,
				Tax:         item.Tax,
			})
			if err != nil {
				return err
			}
		}
		if err := tx.Items().Delete(ctx, name); err != nil {
			return err
		}
		removal = &Removal{EventID: eventID, Item: *item, Sellers: sellers}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removal, nil
}
