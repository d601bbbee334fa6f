package analytics

import (
	"trading-journal-go/internal/models"

	"github.com/shopspring/decimal"
)

// Order is the display order of the trade log.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// LedgerRow is one line of the trade log with the account balance right after
// the trade.
type LedgerRow struct {
	models.Trade
	Outcome models.Outcome  `json:"outcome"`
	Balance decimal.Decimal `json:"balance"`
}

// Ledger lists trades with a running balance column. The balance is always
// accumulated oldest first; order only affects presentation.
func Ledger(trades []models.Trade, initialCapital decimal.Decimal, order Order) []LedgerRow {
	ordered := Chronological(trades)
	rows := make([]LedgerRow, len(ordered))
	balance := initialCapital
	for i, t := range ordered {
		balance = balance.Add(t.NetResult)
		rows[i] = LedgerRow{Trade: t, Outcome: t.Outcome(), Balance: balance}
	}
	if order == OrderDesc {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}
	return rows
}
