// Package api holds the request and response messages of the limbo.v1
// services. Amounts travel as decimal strings ("12.34") and profit splits as
// decimal strings ("0.45") or the literal "remainder".
package api

import "time"

// RemainderShare marks the seller who takes whatever tax and the other shares
// leave over.
const RemainderShare = "remainder"

type Account struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Balance    string    `json:"balance"`
	ExternalID int64     `json:"externalId,omitempty"`
	JoinDate   time.Time `json:"joinDate"`
}

type SellerShare struct {
	Seller string `json:"seller"`
	Share  string `json:"share"`
}

type Item struct {
	Name        string        `json:"name"`
	Count       int64         `json:"count"`
	UnitPrice   string        `json:"unitPrice"`
	Tax         string        `json:"tax"`
	StockDate   time.Time     `json:"stockDate"`
	ExpiryDate  time.Time     `json:"expiryDate"`
	Description string        `json:"description,omitempty"`
	Sellers     []SellerShare `json:"sellers"`
}

type Credit struct {
	Seller string `json:"seller"`
	Amount string `json:"amount"`
}

// HistoryEntry is one history row flattened to a common shape. Kind is one
// of purchase, transfer, balance_change, stocking, expiry.
type HistoryEntry struct {
	Kind        string    `json:"kind"`
	Date        time.Time `json:"date"`
	EventID     string    `json:"eventId"`
	Item        string    `json:"item,omitempty"`
	From        string    `json:"from,omitempty"`
	To          string    `json:"to,omitempty"`
	OldCount    string    `json:"oldCount,omitempty"`
	Count       string    `json:"count,omitempty"`
	PriceEach   string    `json:"priceEach,omitempty"`
	ProfitSplit string    `json:"profitSplit,omitempty"`
	Tax         string    `json:"tax,omitempty"`
	Amount      string    `json:"amount,omitempty"`
}

// LedgerService

type CreateAccountRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	ExternalID int64  `json:"externalId,omitempty"`
}

type CreateAccountResponse struct {
	Account Account `json:"account"`
}

type GetAccountRequest struct {
	Name string `json:"name"`
}

type GetAccountResponse struct {
	Account Account `json:"account"`
}

type ListAccountsRequest struct{}

type ListAccountsResponse struct {
	Accounts []Account `json:"accounts"`
}

type RestockRequest struct {
	Item        string        `json:"item"`
	Sellers     []SellerShare `json:"sellers"`
	Count       int64         `json:"count"`
	UnitPrice   string        `json:"unitPrice"`
	Tax         string        `json:"tax"`
	ExpiryWeeks int           `json:"expiryWeeks,omitempty"`
	Description string        `json:"description,omitempty"`
}

type RestockResponse struct {
	Item Item `json:"item"`
}

type AdjustStockRequest struct {
	Item  string `json:"item"`
	Delta int64  `json:"delta"`
}

type AdjustStockResponse struct {
	EventID  string `json:"eventId,omitempty"`
	Item     string `json:"item"`
	OldCount int64  `json:"oldCount"`
	NewCount int64  `json:"newCount"`
	Removed  bool   `json:"removed,omitempty"`
}

type CheckoutRequest struct {
	Item  string `json:"item"`
	Buyer string `json:"buyer"`
	Count int64  `json:"count"`
}

type CheckoutResponse struct {
	EventID      string   `json:"eventId"`
	Item         string   `json:"item"`
	Buyer        string   `json:"buyer"`
	Count        int64    `json:"count"`
	UnitPrice    string   `json:"unitPrice"`
	Total        string   `json:"total"`
	Credits      []Credit `json:"credits"`
	Retained     string   `json:"retained"`
	BuyerBalance string   `json:"buyerBalance"`
	Remaining    int64    `json:"remaining"`
}

type TransferRequest struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Amount   string `json:"amount"`
}

type TransferResponse struct {
	EventID string    `json:"eventId"`
	Date    time.Time `json:"date"`
}

type DonateRequest struct {
	Amount string `json:"amount"`
}

type DonateResponse struct {
	EventID string    `json:"eventId"`
	Date    time.Time `json:"date"`
}

type ChangeBalanceRequest struct {
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

type ChangeBalanceResponse struct {
	Account Account `json:"account"`
}

type TotalCashRequest struct{}

type TotalCashResponse struct {
	Total string `json:"total"`
}

type InventoryRequest struct{}

type InventoryResponse struct {
	Items []Item `json:"items"`
}

type StoreInfoRequest struct {
	Account string `json:"account"`
}

type StoreInfoResponse struct {
	Account      Account        `json:"account"`
	AccountNames []string       `json:"accountNames"`
	Inventory    []Item         `json:"inventory"`
	OwnItems     []string       `json:"ownItems"`
	History      []HistoryEntry `json:"history"`
}

type HistoryRequest struct {
	Account string `json:"account"`
}

type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// AuthService

type LoginRequest struct {
	Operator string `json:"operator"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AdminService

type Drift struct {
	Account  string `json:"account"`
	Stored   string `json:"stored"`
	Expected string `json:"expected"`
}

type Summary struct {
	Accounts     int    `json:"accounts"`
	Balances     string `json:"balances"`
	Donations    string `json:"donations"`
	ExpectedCash string `json:"expectedCash"`
	Deposits     string `json:"deposits"`
	Retained     string `json:"retained"`
}

type ReconcileRequest struct{}

type ReconcileResponse struct {
	Date    time.Time `json:"date"`
	Drifts  []Drift   `json:"drifts"`
	Summary Summary   `json:"summary"`

	// Text is the report rendered for a terminal.
	Text string `json:"text"`
}

type RepairRequest struct {
	Drifts []Drift `json:"drifts"`

	// Confirm must be true for anything to be written.
	Confirm bool `json:"confirm"`
}

type RepairResponse struct {
	Repaired int `json:"repaired"`
}

type ExpireRequest struct {
	DryRun bool `json:"dryRun"`
}

type ExpiredItem struct {
	EventID string `json:"eventId,omitempty"`
	Item    Item   `json:"item"`
}

type ExpireResponse struct {
	Date    time.Time     `json:"date"`
	DryRun  bool          `json:"dryRun"`
	Removed []ExpiredItem `json:"removed"`
}

type RecordStatisticsRequest struct{}

type RecordStatisticsResponse struct {
	Date           time.Time `json:"date"`
	AverageBalance string    `json:"averageBalance"`
	ExpectedCash   string    `json:"expectedCash"`
	Transactions   int64     `json:"transactions"`
}
