package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/limbo/internal/engine"
	"github.com/mmynk/limbo/internal/money"
	"github.com/mmynk/limbo/pkg/api"
	"github.com/mmynk/limbo/pkg/api/apiconnect"
)

// Ensure LedgerService implements the Connect handler interface
var _ apiconnect.LedgerServiceHandler = (*LedgerService)(nil)

// LedgerService implements the Connect LedgerService on top of the
// transaction engine.
type LedgerService struct {
	engine *engine.Engine
}

// NewLedgerService creates a new LedgerService backed by e.
func NewLedgerService(e *engine.Engine) *LedgerService {
	return &LedgerService{engine: e}
}

// CreateAccount opens a member account with a zero balance.
func (s *LedgerService) CreateAccount(ctx context.Context, req *connect.Request[api.CreateAccountRequest]) (*connect.Response[api.CreateAccountResponse], error) {
	account, err := s.engine.CreateAccount(ctx, engine.CreateAccountRequest{
		Name:       req.Msg.Name,
		Email:      req.Msg.Email,
		ExternalID: req.Msg.ExternalID,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.CreateAccountResponse{Account: toAPIAccount(account)}), nil
}

func (s *LedgerService) GetAccount(ctx context.Context, req *connect.Request[api.GetAccountRequest]) (*connect.Response[api.GetAccountResponse], error) {
	account, err := s.engine.Account(ctx, req.Msg.Name)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetAccountResponse{Account: toAPIAccount(account)}), nil
}

func (s *LedgerService) ListAccounts(ctx context.Context, req *connect.Request[api.ListAccountsRequest]) (*connect.Response[api.ListAccountsResponse], error) {
	accounts, err := s.engine.Accounts(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	resp := &api.ListAccountsResponse{Accounts: make([]api.Account, len(accounts))}
	for i := range accounts {
		resp.Accounts[i] = toAPIAccount(&accounts[i])
	}
	return connect.NewResponse(resp), nil
}

// Restock puts a new item on sale.
func (s *LedgerService) Restock(ctx context.Context, req *connect.Request[api.RestockRequest]) (*connect.Response[api.RestockResponse], error) {
	slog.Debug("Restock request",
		"item", req.Msg.Item,
		"count", req.Msg.Count,
		"unit_price", req.Msg.UnitPrice,
		"sellers", len(req.Msg.Sellers),
	)

	shares, err := parseShares(req.Msg.Sellers)
	if err != nil {
		return nil, toConnectError(err)
	}
	price, err := money.Parse(req.Msg.UnitPrice)
	if err != nil {
		return nil, toConnectError(err)
	}
	tax, err := parseTax(req.Msg.Tax)
	if err != nil {
		return nil, toConnectError(err)
	}

	listing, err := s.engine.Restock(ctx, engine.RestockRequest{
		Item:        req.Msg.Item,
		Sellers:     shares,
		Count:       req.Msg.Count,
		UnitPrice:   price,
		Tax:         tax,
		ExpiryWeeks: req.Msg.ExpiryWeeks,
		Description: req.Msg.Description,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.RestockResponse{Item: toAPIItem(listing)}), nil
}

func (s *LedgerService) AdjustStock(ctx context.Context, req *connect.Request[api.AdjustStockRequest]) (*connect.Response[api.AdjustStockResponse], error) {
	result, err := s.engine.AdjustStock(ctx, engine.AdjustStockRequest{Item: req.Msg.Item, Delta: req.Msg.Delta})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.AdjustStockResponse{
		EventID:  result.EventID,
		Item:     result.Item,
		OldCount: result.OldCount,
		NewCount: result.NewCount,
		Removed:  result.Removed,
	}), nil
}

// Checkout sells units of an item to a buyer.
func (s *LedgerService) Checkout(ctx context.Context, req *connect.Request[api.CheckoutRequest]) (*connect.Response[api.CheckoutResponse], error) {
	receipt, err := s.engine.Checkout(ctx, engine.CheckoutRequest{
		Item:  req.Msg.Item,
		Buyer: req.Msg.Buyer,
		Count: req.Msg.Count,
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	credits := make([]api.Credit, len(receipt.Credits))
	for i, c := range receipt.Credits {
		credits[i] = api.Credit{Seller: c.Seller, Amount: c.Amount.Plain()}
	}
	return connect.NewResponse(&api.CheckoutResponse{
		EventID:      receipt.EventID,
		Item:         receipt.Item,
		Buyer:        receipt.Buyer,
		Count:        receipt.Count,
		UnitPrice:    receipt.UnitPrice.Plain(),
		Total:        receipt.Total.Plain(),
		Credits:      credits,
		Retained:     receipt.Retained.Plain(),
		BuyerBalance: receipt.BuyerBalance.Plain(),
		Remaining:    receipt.Remaining,
	}), nil
}

func (s *LedgerService) Transfer(ctx context.Context, req *connect.Request[api.TransferRequest]) (*connect.Response[api.TransferResponse], error) {
	amount, err := money.Parse(req.Msg.Amount)
	if err != nil {
		return nil, toConnectError(err)
	}
	t, err := s.engine.Transfer(ctx, engine.TransferRequest{
		Sender:   req.Msg.Sender,
		Receiver: req.Msg.Receiver,
		Amount:   amount,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.TransferResponse{EventID: t.EventID, Date: t.Date}), nil
}

func (s *LedgerService) Donate(ctx context.Context, req *connect.Request[api.DonateRequest]) (*connect.Response[api.DonateResponse], error) {
	amount, err := money.Parse(req.Msg.Amount)
	if err != nil {
		return nil, toConnectError(err)
	}
	d, err := s.engine.Donate(ctx, engine.DonateRequest{Amount: amount})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.DonateResponse{EventID: d.EventID, Date: d.Date}), nil
}

// ChangeBalance records a cash deposit (positive) or withdrawal (negative).
func (s *LedgerService) ChangeBalance(ctx context.Context, req *connect.Request[api.ChangeBalanceRequest]) (*connect.Response[api.ChangeBalanceResponse], error) {
	amount, err := money.Parse(req.Msg.Amount)
	if err != nil {
		return nil, toConnectError(err)
	}
	account, err := s.engine.ChangeBalance(ctx, engine.ChangeBalanceRequest{Account: req.Msg.Account, Amount: amount})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ChangeBalanceResponse{Account: toAPIAccount(account)}), nil
}

func (s *LedgerService) TotalCash(ctx context.Context, req *connect.Request[api.TotalCashRequest]) (*connect.Response[api.TotalCashResponse], error) {
	total, err := s.engine.TotalCash(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.TotalCashResponse{Total: total.Plain()}), nil
}

func (s *LedgerService) Inventory(ctx context.Context, req *connect.Request[api.InventoryRequest]) (*connect.Response[api.InventoryResponse], error) {
	listings, err := s.engine.Inventory(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.InventoryResponse{Items: toAPIItems(listings)}), nil
}

// StoreInfo returns everything the store front needs for one member.
func (s *LedgerService) StoreInfo(ctx context.Context, req *connect.Request[api.StoreInfoRequest]) (*connect.Response[api.StoreInfoResponse], error) {
	info, err := s.engine.StoreInfo(ctx, req.Msg.Account)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.StoreInfoResponse{
		Account:      toAPIAccount(&info.Account),
		AccountNames: info.AccountNames,
		Inventory:    toAPIItems(info.Inventory),
		OwnItems:     info.OwnItems,
		History:      toAPIHistory(&info.History),
	}), nil
}

func (s *LedgerService) History(ctx context.Context, req *connect.Request[api.HistoryRequest]) (*connect.Response[api.HistoryResponse], error) {
	h, err := s.engine.AccountHistory(ctx, req.Msg.Account)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.HistoryResponse{Entries: toAPIHistory(h)}), nil
}
