package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/limbo/internal/engine"
	"github.com/mmynk/limbo/internal/expiry"
	"github.com/mmynk/limbo/internal/middleware"
	"github.com/mmynk/limbo/internal/models"
	"github.com/mmynk/limbo/internal/reconcile"
	"github.com/mmynk/limbo/pkg/api"
	"github.com/mmynk/limbo/pkg/api/apiconnect"
)

var _ apiconnect.AdminServiceHandler = (*AdminService)(nil)

var errRepairNotConfirmed = errors.New("repair must be confirmed")

// AdminService implements the operator-only AdminService. Mount it behind
// middleware.RequireOperator.
type AdminService struct {
	engine     *engine.Engine
	reconciler *reconcile.Reconciler
	sweeper    *expiry.Sweeper
}

// NewAdminService creates a new AdminService.
func NewAdminService(e *engine.Engine, r *reconcile.Reconciler, s *expiry.Sweeper) *AdminService {
	return &AdminService{engine: e, reconciler: r, sweeper: s}
}

// Reconcile reports drifted balances. It never writes.
func (s *AdminService) Reconcile(ctx context.Context, req *connect.Request[api.ReconcileRequest]) (*connect.Response[api.ReconcileResponse], error) {
	report, err := s.reconciler.Report(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	var text bytes.Buffer
	if err := reconcile.WriteText(&text, report); err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	sum := report.Summary
	return connect.NewResponse(&api.ReconcileResponse{
		Date:   report.Date,
		Drifts: toAPIDrifts(report.Drifts),
		Summary: api.Summary{
			Accounts:     sum.Accounts,
			Balances:     sum.Balances.Plain(),
			Donations:    sum.Donations.Plain(),
			ExpectedCash: sum.ExpectedCash().Plain(),
			Deposits:     sum.Deposits.Plain(),
			Retained:     sum.Retained.Plain(),
		},
		Text: text.String(),
	}), nil
}

// Repair applies the drifts from a previous Reconcile.
func (s *AdminService) Repair(ctx context.Context, req *connect.Request[api.RepairRequest]) (*connect.Response[api.RepairResponse], error) {
	if !req.Msg.Confirm {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errRepairNotConfirmed)
	}
	drifts, err := parseDrifts(req.Msg.Drifts)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Repair requested", "operator", middleware.GetOperator(ctx), "accounts", len(drifts))
	n, err := s.reconciler.Repair(ctx, drifts)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.RepairResponse{Repaired: n}), nil
}

// Expire runs the expiry sweep.
func (s *AdminService) Expire(ctx context.Context, req *connect.Request[api.ExpireRequest]) (*connect.Response[api.ExpireResponse], error) {
	result, err := s.sweeper.Sweep(ctx, expiry.Options{DryRun: req.Msg.DryRun})
	if err != nil {
		if result != nil {
			// Items swept before the failure stay swept.
			slog.Error("Expiry sweep interrupted", "removed", len(result.Removed), "error", err)
		}
		return nil, toConnectError(err)
	}

	resp := &api.ExpireResponse{
		Date:    result.Date,
		DryRun:  result.DryRun,
		Removed: make([]api.ExpiredItem, len(result.Removed)),
	}
	for i, r := range result.Removed {
		listing := models.Listing{Item: r.Item, Sellers: r.Sellers}
		resp.Removed[i] = api.ExpiredItem{EventID: r.EventID, Item: toAPIItem(&listing)}
	}
	return connect.NewResponse(resp), nil
}

// RecordStatistics snapshots the store's totals.
func (s *AdminService) RecordStatistics(ctx context.Context, req *connect.Request[api.RecordStatisticsRequest]) (*connect.Response[api.RecordStatisticsResponse], error) {
	record, err := s.engine.RecordStatistics(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.RecordStatisticsResponse{
		Date:           record.Date,
		AverageBalance: record.AverageBalance.Plain(),
		ExpectedCash:   record.ExpectedCash.Plain(),
		Transactions:   record.Transactions,
	}), nil
}
