package engine

import (
	"github.com/mmynk/limbo/internal/calculator"
	"github.com/mmynk/limbo/internal/models"
	"github.com/mmynk/limbo/internal/money"
)

// CreateAccountRequest opens a new account with a zero balance.
type CreateAccountRequest struct {
	Name       string
	Email      string
	ExternalID int64
}

// RestockRequest stocks a brand-new item.
type RestockRequest struct {
	Item        string
	Sellers     []calculator.Share
	Count       int64
	UnitPrice   money.Money
	Tax         money.Fraction
	ExpiryWeeks int // 0 means the engine default
	Description string
}

// AdjustStockRequest adds (positive Delta) or removes (negative Delta) units
// of an active item.
type AdjustStockRequest struct {
	Item  string
	Delta int64
}

// CheckoutRequest sells Count units of Item to Buyer.
type CheckoutRequest struct {
	Item  string
	Buyer string
	Count int64
}

// TransferRequest moves Amount from Sender to Receiver.
type TransferRequest struct {
	Sender   string
	Receiver string
	Amount   money.Money
}

// DonateRequest records cash entering the store from outside.
type DonateRequest struct {
	Amount money.Money
}

// ChangeBalanceRequest deposits (positive) or withdraws (negative) cash.
type ChangeBalanceRequest struct {
	Account string
	Amount  money.Money
}

// StockResult describes an item after AdjustStock.
type StockResult struct {
	EventID  string
	Item     string
	OldCount int64
	NewCount int64

	// Removed is set when the count reached zero and the item was deleted.
	Removed bool
}

// Receipt describes a completed checkout.
type Receipt struct {
	EventID   string
	Item      string
	Buyer     string
	Count     int64
	UnitPrice money.Money
	Total     money.Money
	Credits   []calculator.Credit

	// Retained is the part of Total not credited to any seller.
	Retained money.Money

	BuyerBalance money.Money
	Remaining    int64
}

// StoreInfo is everything a member's store page shows.
type StoreInfo struct {
	Account      models.Account
	AccountNames []string
	Inventory    []models.Listing
	OwnItems     []string
	History      models.History
}
