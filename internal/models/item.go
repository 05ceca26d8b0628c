package models

import (
	"time"

	"github.com/mmynk/limbo/internal/money"
)

// Item is an active line of inventory. It exists only while Count > 0.
type Item struct {
	// Name is the unique key of the item while it is active. Once the item is
	// removed the name may be reused for a brand-new item.
	Name string

	Count     int64
	UnitPrice money.Money

	// Tax is the fraction of every sale kept by the store.
	Tax money.Fraction

	StockDate  time.Time
	ExpiryDate time.Time

	Description string
}

// Expired reports whether the item is past its expiry date at now.
func (i *Item) Expired(now time.Time) bool {
	return i.ExpiryDate.Before(now)
}

// SellerAssignment is the fraction of an item's sale price owed to a seller.
type SellerAssignment struct {
	ItemName    string
	Seller      string
	ProfitSplit money.Fraction
}

// Listing is an active item together with its seller assignments.
type Listing struct {
	Item    Item
	Sellers []SellerAssignment
}
