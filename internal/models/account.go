package models

import (
	"time"

	"github.com/mmynk/limbo/internal/money"
)

// Account is a named holder of a cash balance.
type Account struct {
	// Name is the unique key of the account (the username).
	Name string

	// Email is a contact address. Not validated.
	Email string

	// Balance may be negative: members are allowed to run a tab.
	Balance money.Money

	// ExternalID is an identifier issued outside the store (e.g. a campus ID).
	ExternalID int64

	// JoinDate is when the account was created.
	JoinDate time.Time
}
