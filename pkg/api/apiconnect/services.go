package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/limbo/pkg/api"
)

// Fully-qualified service names.
const (
	LedgerServiceName = "limbo.v1.LedgerService"
	AuthServiceName   = "limbo.v1.AuthService"
	AdminServiceName  = "limbo.v1.AdminService"
)

// Procedure paths, one per RPC.
const (
	LedgerServiceCreateAccountProcedure   = "/limbo.v1.LedgerService/CreateAccount"
	LedgerServiceGetAccountProcedure      = "/limbo.v1.LedgerService/GetAccount"
	LedgerServiceListAccountsProcedure    = "/limbo.v1.LedgerService/ListAccounts"
	LedgerServiceRestockProcedure         = "/limbo.v1.LedgerService/Restock"
	LedgerServiceAdjustStockProcedure     = "/limbo.v1.LedgerService/AdjustStock"
	LedgerServiceCheckoutProcedure        = "/limbo.v1.LedgerService/Checkout"
	LedgerServiceTransferProcedure        = "/limbo.v1.LedgerService/Transfer"
	LedgerServiceDonateProcedure          = "/limbo.v1.LedgerService/Donate"
	LedgerServiceChangeBalanceProcedure   = "/limbo.v1.LedgerService/ChangeBalance"
	LedgerServiceTotalCashProcedure       = "/limbo.v1.LedgerService/TotalCash"
	LedgerServiceInventoryProcedure       = "/limbo.v1.LedgerService/Inventory"
	LedgerServiceStoreInfoProcedure       = "/limbo.v1.LedgerService/StoreInfo"
	LedgerServiceHistoryProcedure         = "/limbo.v1.LedgerService/History"
	AuthServiceLoginProcedure             = "/limbo.v1.AuthService/Login"
	AdminServiceReconcileProcedure        = "/limbo.v1.AdminService/Reconcile"
	AdminServiceRepairProcedure           = "/limbo.v1.AdminService/Repair"
	AdminServiceExpireProcedure           = "/limbo.v1.AdminService/Expire"
	AdminServiceRecordStatisticsProcedure = "/limbo.v1.AdminService/RecordStatistics"
)

// LedgerServiceHandler is implemented by the server side of LedgerService.
type LedgerServiceHandler interface {
	CreateAccount(context.Context, *connect.Request[api.CreateAccountRequest]) (*connect.Response[api.CreateAccountResponse], error)
	GetAccount(context.Context, *connect.Request[api.GetAccountRequest]) (*connect.Response[api.GetAccountResponse], error)
	ListAccounts(context.Context, *connect.Request[api.ListAccountsRequest]) (*connect.Response[api.ListAccountsResponse], error)
	Restock(context.Context, *connect.Request[api.RestockRequest]) (*connect.Response[api.RestockResponse], error)
	AdjustStock(context.Context, *connect.Request[api.AdjustStockRequest]) (*connect.Response[api.AdjustStockResponse], error)
	Checkout(context.Context, *connect.Request[api.CheckoutRequest]) (*connect.Response[api.CheckoutResponse], error)
	Transfer(context.Context, *connect.Request[api.TransferRequest]) (*connect.Response[api.TransferResponse], error)
	Donate(context.Context, *connect.Request[api.DonateRequest]) (*connect.Response[api.DonateResponse], error)
	ChangeBalance(context.Context, *connect.Request[api.ChangeBalanceRequest]) (*connect.Response[api.ChangeBalanceResponse], error)
	TotalCash(context.Context, *connect.Request[api.TotalCashRequest]) (*connect.Response[api.TotalCashResponse], error)
	Inventory(context.Context, *connect.Request[api.InventoryRequest]) (*connect.Response[api.InventoryResponse], error)
	StoreInfo(context.Context, *connect.Request[api.StoreInfoRequest]) (*connect.Response[api.StoreInfoResponse], error)
	History(context.Context, *connect.Request[api.HistoryRequest]) (*connect.Response[api.HistoryResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler for LedgerService and returns
// the path to mount it on.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(LedgerServiceCreateAccountProcedure, connect.NewUnaryHandler(LedgerServiceCreateAccountProcedure, svc.CreateAccount, opts...))
	mux.Handle(LedgerServiceGetAccountProcedure, connect.NewUnaryHandler(LedgerServiceGetAccountProcedure, svc.GetAccount, opts...))
	mux.Handle(LedgerServiceListAccountsProcedure, connect.NewUnaryHandler(LedgerServiceListAccountsProcedure, svc.ListAccounts, opts...))
	mux.Handle(LedgerServiceRestockProcedure, connect.NewUnaryHandler(LedgerServiceRestockProcedure, svc.Restock, opts...))
	mux.Handle(LedgerServiceAdjustStockProcedure, connect.NewUnaryHandler(LedgerServiceAdjustStockProcedure, svc.AdjustStock, opts...))
	mux.Handle(LedgerServiceCheckoutProcedure, connect.NewUnaryHandler(LedgerServiceCheckoutProcedure, svc.Checkout, opts...))
	mux.Handle(LedgerServiceTransferProcedure, connect.NewUnaryHandler(LedgerServiceTransferProcedure, svc.Transfer, opts...))
	mux.Handle(LedgerServiceDonateProcedure, connect.NewUnaryHandler(LedgerServiceDonateProcedure, svc.Donate, opts...))
	mux.Handle(LedgerServiceChangeBalanceProcedure, connect.NewUnaryHandler(LedgerServiceChangeBalanceProcedure, svc.ChangeBalance, opts...))
	mux.Handle(LedgerServiceTotalCashProcedure, connect.NewUnaryHandler(LedgerServiceTotalCashProcedure, svc.TotalCash, opts...))
	mux.Handle(LedgerServiceInventoryProcedure, connect.NewUnaryHandler(LedgerServiceInventoryProcedure, svc.Inventory, opts...))
	mux.Handle(LedgerServiceStoreInfoProcedure, connect.NewUnaryHandler(LedgerServiceStoreInfoProcedure, svc.StoreInfo, opts...))
	mux.Handle(LedgerServiceHistoryProcedure, connect.NewUnaryHandler(LedgerServiceHistoryProcedure, svc.History, opts...))
	return "/" + LedgerServiceName + "/", mux
}

// LedgerServiceClient is a client for LedgerService.
type LedgerServiceClient interface {
	CreateAccount(context.Context, *connect.Request[api.CreateAccountRequest]) (*connect.Response[api.CreateAccountResponse], error)
	GetAccount(context.Context, *connect.Request[api.GetAccountRequest]) (*connect.Response[api.GetAccountResponse], error)
	ListAccounts(context.Context, *connect.Request[api.ListAccountsRequest]) (*connect.Response[api.ListAccountsResponse], error)
	Restock(context.Context, *connect.Request[api.RestockRequest]) (*connect.Response[api.RestockResponse], error)
	AdjustStock(context.Context, *connect.Request[api.AdjustStockRequest]) (*connect.Response[api.AdjustStockResponse], error)
	Checkout(context.Context, *connect.Request[api.CheckoutRequest]) (*connect.Response[api.CheckoutResponse], error)
	Transfer(context.Context, *connect.Request[api.TransferRequest]) (*connect.Response[api.TransferResponse], error)
	Donate(context.Context, *connect.Request[api.DonateRequest]) (*connect.Response[api.DonateResponse], error)
	ChangeBalance(context.Context, *connect.Request[api.ChangeBalanceRequest]) (*connect.Response[api.ChangeBalanceResponse], error)
	TotalCash(context.Context, *connect.Request[api.TotalCashRequest]) (*connect.Response[api.TotalCashResponse], error)
	Inventory(context.Context, *connect.Request[api.InventoryRequest]) (*connect.Response[api.InventoryResponse], error)
	StoreInfo(context.Context, *connect.Request[api.StoreInfoRequest]) (*connect.Response[api.StoreInfoResponse], error)
	History(context.Context, *connect.Request[api.HistoryRequest]) (*connect.Response[api.HistoryResponse], error)
}

type ledgerServiceClient struct {
	createAccount *connect.Client[api.CreateAccountRequest, api.CreateAccountResponse]
	getAccount    *connect.Client[api.GetAccountRequest, api.GetAccountResponse]
	listAccounts  *connect.Client[api.ListAccountsRequest, api.ListAccountsResponse]
	restock       *connect.Client[api.RestockRequest, api.RestockResponse]
	adjustStock   *connect.Client[api.AdjustStockRequest, api.AdjustStockResponse]
	checkout      *connect.Client[api.CheckoutRequest, api.CheckoutResponse]
	transfer      *connect.Client[api.TransferRequest, api.TransferResponse]
	donate        *connect.Client[api.DonateRequest, api.DonateResponse]
	changeBalance *connect.Client[api.ChangeBalanceRequest, api.ChangeBalanceResponse]
	totalCash     *connect.Client[api.TotalCashRequest, api.TotalCashResponse]
	inventory     *connect.Client[api.InventoryRequest, api.InventoryResponse]
	storeInfo     *connect.Client[api.StoreInfoRequest, api.StoreInfoResponse]
	history       *connect.Client[api.HistoryRequest, api.HistoryResponse]
}

// NewLedgerServiceClient creates a client for LedgerService at baseURL, for
// example http://localhost:8080.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	opts = clientOptions(opts)
	return &ledgerServiceClient{
		createAccount: connect.NewClient[api.CreateAccountRequest, api.CreateAccountResponse](httpClient, baseURL+LedgerServiceCreateAccountProcedure, opts...),
		getAccount:    connect.NewClient[api.GetAccountRequest, api.GetAccountResponse](httpClient, baseURL+LedgerServiceGetAccountProcedure, opts...),
		listAccounts:  connect.NewClient[api.ListAccountsRequest, api.ListAccountsResponse](httpClient, baseURL+LedgerServiceListAccountsProcedure, opts...),
		restock:       connect.NewClient[api.RestockRequest, api.RestockResponse](httpClient, baseURL+LedgerServiceRestockProcedure, opts...),
		adjustStock:   connect.NewClient[api.AdjustStockRequest, api.AdjustStockResponse](httpClient, baseURL+LedgerServiceAdjustStockProcedure, opts...),
		checkout:      connect.NewClient[api.CheckoutRequest, api.CheckoutResponse](httpClient, baseURL+LedgerServiceCheckoutProcedure, opts...),
		transfer:      connect.NewClient[api.TransferRequest, api.TransferResponse](httpClient, baseURL+LedgerServiceTransferProcedure, opts...),
		donate:        connect.NewClient[api.DonateRequest, api.DonateResponse](httpClient, baseURL+LedgerServiceDonateProcedure, opts...),
		changeBalance: connect.NewClient[api.ChangeBalanceRequest, api.ChangeBalanceResponse](httpClient, baseURL+LedgerServiceChangeBalanceProcedure, opts...),
		totalCash:     connect.NewClient[api.TotalCashRequest, api.TotalCashResponse](httpClient, baseURL+LedgerServiceTotalCashProcedure, opts...),
		inventory:     connect.NewClient[api.InventoryRequest, api.InventoryResponse](httpClient, baseURL+LedgerServiceInventoryProcedure, opts...),
		storeInfo:     connect.NewClient[api.StoreInfoRequest, api.StoreInfoResponse](httpClient, baseURL+LedgerServiceStoreInfoProcedure, opts...),
		history:       connect.NewClient[api.HistoryRequest, api.HistoryResponse](httpClient, baseURL+LedgerServiceHistoryProcedure, opts...),
	}
}

func (c *ledgerServiceClient) CreateAccount(ctx context.Context, req *connect.Request[api.CreateAccountRequest]) (*connect.Response[api.CreateAccountResponse], error) {
	return c.createAccount.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetAccount(ctx context.Context, req *connect.Request[api.GetAccountRequest]) (*connect.Response[api.GetAccountResponse], error) {
	return c.getAccount.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListAccounts(ctx context.Context, req *connect.Request[api.ListAccountsRequest]) (*connect.Response[api.ListAccountsResponse], error) {
	return c.listAccounts.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) Restock(ctx context.Context, req *connect.Request[api.RestockRequest]) (*connect.Response[api.RestockResponse], error) {
	return c.restock.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) AdjustStock(ctx context.Context, req *connect.Request[api.AdjustStockRequest]) (*connect.Response[api.AdjustStockResponse], error) {
	return c.adjustStock.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) Checkout(ctx context.Context, req *connect.Request[api.CheckoutRequest]) (*connect.Response[api.CheckoutResponse], error) {
	return c.checkout.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) Transfer(ctx context.Context, req *connect.Request[api.TransferRequest]) (*connect.Response[api.TransferResponse], error) {
	return c.transfer.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) Donate(ctx context.Context, req *connect.Request[api.DonateRequest]) (*connect.Response[api.DonateResponse], error) {
	return c.donate.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ChangeBalance(ctx context.Context, req *connect.Request[api.ChangeBalanceRequest]) (*connect.Response[api.ChangeBalanceResponse], error) {
	return c.changeBalance.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) TotalCash(ctx context.Context, req *connect.Request[api.TotalCashRequest]) (*connect.Response[api.TotalCashResponse], error) {
	return c.totalCash.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) Inventory(ctx context.Context, req *connect.Request[api.InventoryRequest]) (*connect.Response[api.InventoryResponse], error) {
	return c.inventory.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) StoreInfo(ctx context.Context, req *connect.Request[api.StoreInfoRequest]) (*connect.Response[api.StoreInfoResponse], error) {
	return c.storeInfo.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) History(ctx context.Context, req *connect.Request[api.HistoryRequest]) (*connect.Response[api.HistoryResponse], error) {
	return c.history.CallUnary(ctx, req)
}

// AuthServiceHandler is implemented by the server side of AuthService.
type AuthServiceHandler interface {
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler for AuthService and returns
// the path to mount it on.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(AuthServiceLoginProcedure, connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...))
	return "/" + AuthServiceName + "/", mux
}

// AuthServiceClient is a client for AuthService.
type AuthServiceClient interface {
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
}

type authServiceClient struct {
	login *connect.Client[api.LoginRequest, api.LoginResponse]
}

// NewAuthServiceClient creates a client for AuthService at baseURL, for
// example http://localhost:8080.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	opts = clientOptions(opts)
	return &authServiceClient{
		login: connect.NewClient[api.LoginRequest, api.LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
	}
}

func (c *authServiceClient) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

// AdminServiceHandler is implemented by the server side of AdminService.
type AdminServiceHandler interface {
	Reconcile(context.Context, *connect.Request[api.ReconcileRequest]) (*connect.Response[api.ReconcileResponse], error)
	Repair(context.Context, *connect.Request[api.RepairRequest]) (*connect.Response[api.RepairResponse], error)
	Expire(context.Context, *connect.Request[api.ExpireRequest]) (*connect.Response[api.ExpireResponse], error)
	RecordStatistics(context.Context, *connect.Request[api.RecordStatisticsRequest]) (*connect.Response[api.RecordStatisticsResponse], error)
}

// NewAdminServiceHandler builds an HTTP handler for AdminService and returns
// the path to mount it on.
func NewAdminServiceHandler(svc AdminServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(AdminServiceReconcileProcedure, connect.NewUnaryHandler(AdminServiceReconcileProcedure, svc.Reconcile, opts...))
	mux.Handle(AdminServiceRepairProcedure, connect.NewUnaryHandler(AdminServiceRepairProcedure, svc.Repair, opts...))
	mux.Handle(AdminServiceExpireProcedure, connect.NewUnaryHandler(AdminServiceExpireProcedure, svc.Expire, opts...))
	mux.Handle(AdminServiceRecordStatisticsProcedure, connect.NewUnaryHandler(AdminServiceRecordStatisticsProcedure, svc.RecordStatistics, opts...))
	return "/" + AdminServiceName + "/", mux
}

// AdminServiceClient is a client for AdminService.
type AdminServiceClient interface {
	Reconcile(context.Context, *connect.Request[api.ReconcileRequest]) (*connect.Response[api.ReconcileResponse], error)
	Repair(context.Context, *connect.Request[api.RepairRequest]) (*connect.Response[api.RepairResponse], error)
	Expire(context.Context, *connect.Request[api.ExpireRequest]) (*connect.Response[api.ExpireResponse], error)
	RecordStatistics(context.Context, *connect.Request[api.RecordStatisticsRequest]) (*connect.Response[api.RecordStatisticsResponse], error)
}

type adminServiceClient struct {
	reconcile        *connect.Client[api.ReconcileRequest, api.ReconcileResponse]
	repair           *connect.Client[api.RepairRequest, api.RepairResponse]
	expire           *connect.Client[api.ExpireRequest, api.ExpireResponse]
	recordStatistics *connect.Client[api.RecordStatisticsRequest, api.RecordStatisticsResponse]
}

// NewAdminServiceClient creates a client for AdminService at baseURL, for
// example http://localhost:8080.
func NewAdminServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AdminServiceClient {
	opts = clientOptions(opts)
	return &adminServiceClient{
		reconcile:        connect.NewClient[api.ReconcileRequest, api.ReconcileResponse](httpClient, baseURL+AdminServiceReconcileProcedure, opts...),
		repair:           connect.NewClient[api.RepairRequest, api.RepairResponse](httpClient, baseURL+AdminServiceRepairProcedure, opts...),
		expire:           connect.NewClient[api.ExpireRequest, api.ExpireResponse](httpClient, baseURL+AdminServiceExpireProcedure, opts...),
		recordStatistics: connect.NewClient[api.RecordStatisticsRequest, api.RecordStatisticsResponse](httpClient, baseURL+AdminServiceRecordStatisticsProcedure, opts...),
	}
}

func (c *adminServiceClient) Reconcile(ctx context.Context, req *connect.Request[api.ReconcileRequest]) (*connect.Response[api.ReconcileResponse], error) {
	return c.reconcile.CallUnary(ctx, req)
}

func (c *adminServiceClient) Repair(ctx context.Context, req *connect.Request[api.RepairRequest]) (*connect.Response[api.RepairResponse], error) {
	return c.repair.CallUnary(ctx, req)
}

func (c *adminServiceClient) Expire(ctx context.Context, req *connect.Request[api.ExpireRequest]) (*connect.Response[api.ExpireResponse], error) {
	return c.expire.CallUnary(ctx, req)
}

func (c *adminServiceClient) RecordStatistics(ctx context.Context, req *connect.Request[api.RecordStatisticsRequest]) (*connect.Response[api.RecordStatisticsResponse], error) {
	return c.recordStatistics.CallUnary(ctx, req)
}
