package models

import (
	"time"

	"github.com/mmynk/limbo/internal/money"
)

// StatisticsRecord is a periodic snapshot used for charts.
type StatisticsRecord struct {
	Date time.Time

	// AverageBalance is the mean account balance, rounded down.
	AverageBalance money.Money

	// ExpectedCash is the sum of all balances and all donations.
	ExpectedCash money.Money

	// Transactions counts history rows written since the previous record.
	// It is not cumulative.
	Transactions int64
}
