package calculator

import (
	"sort"
	"time"

	"github.com/mmynk/limbo/internal/money"
)

// SaleForBalance is one Purchase row with the minimal information needed to
// replay balances. A checkout with N sellers produces N rows sharing an
// EventID.
type SaleForBalance struct {
	EventID     string
	Date        time.Time
	Buyer       string
	Seller      string
	PriceEach   money.Money
	Count       int64
	ProfitSplit money.Fraction
}

// TransferForBalance is one Transfer row.
type TransferForBalance struct {
	Sender   string
	Receiver string
	Amount   money.Money
}

// ChangeForBalance is one BalanceChange row (deposit or withdrawal).
type ChangeForBalance struct {
	Account string
	Amount  money.Money
}

// AccountBalance is an account's balance as implied by its history.
type AccountBalance struct {
	Account  string
	Expected money.Money

	Deposited money.Money // net of withdrawals
	Earned    money.Money // seller credits
	Spent     money.Money // buyer debits
	Received  money.Money
	Sent      money.Money
}

// Replay is the result of ReplayBalances.
type Replay struct {
	Balances []AccountBalance // sorted by account

	// Retained is what buyers paid that was never credited to a seller:
	// tax plus rounding residue.
	Retained money.Money
}

// ReplayBalances recomputes every account's balance purely from history.
//
// Algorithm:
//   - balance changes are added as-is
//   - a seller earns roundDown(price × count × split) per sale row
//   - a buyer pays roundDown(price × count) once per checkout event, however
//     many seller rows the checkout produced
//   - transfers move the amount from sender to receiver
//
// Accounts with no history appear with a zero expected balance.
func ReplayBalances(accounts []string, changes []ChangeForBalance, sales []SaleForBalance, transfers []TransferForBalance) Replay {
	balances := make(map[string]*AccountBalance, len(accounts))
	get := func(name string) *AccountBalance {
		b, ok := balances[name]
		if !ok {
			b = &AccountBalance{Account: name}
			balances[name] = b
		}
		return b
	}
	for _, name := range accounts {
		get(name)
	}

	for _, c := range changes {
		get(c.Account).Deposited = get(c.Account).Deposited.Add(c.Amount)
	}

	var paid, credited money.Money
	debited := make(map[string]bool)
	for _, s := range sales {
		total := TotalPrice(s.PriceEach, s.Count)
		credit := total.MulFraction(s.ProfitSplit)
		seller := get(s.Seller)
		seller.Earned = seller.Earned.Add(credit)
		credited = credited.Add(credit)

		key := s.Buyer + "\x00" + s.EventID
		if s.EventID == "" {
			key = s.Buyer + "\x00" + s.Date.UTC().Format(time.RFC3339Nano)
		}
		if debited[key] {
			continue
		}
		debited[key] = true
		buyer := get(s.Buyer)
		buyer.Spent = buyer.Spent.Add(total)
		paid = paid.Add(total)
	}

	for _, t := range transfers {
		sender := get(t.Sender)
		sender.Sent = sender.Sent.Add(t.Amount)
		receiver := get(t.Receiver)
		receiver.Received = receiver.Received.Add(t.Amount)
	}

	result := Replay{Retained: paid.Sub(credited)}
	for _, b := range balances {
		b.Expected = b.Deposited.Add(b.Earned).Add(b.Received).Sub(b.Spent).Sub(b.Sent)
		result.Balances = append(result.Balances, *b)
	}
	sort.Slice(result.Balances, func(i, j int) bool {
		return result.Balances[i].Account < result.Balances[j].Account
	})
	return result
}
