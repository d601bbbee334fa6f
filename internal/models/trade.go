package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade represents one logged position. It is stamped with its derived
// monetary fields before it is stored and is never edited afterwards.
type Trade struct {
	ID         string    `json:"id"`
	Owner      string    `json:"owner"`
	Date       time.Time `json:"date"`
	EntryTime  *Clock    `json:"entry_time,omitempty"`
	ExitTime   *Clock    `json:"exit_time,omitempty"`
	Instrument string    `json:"instrument"`
	Direction  Direction `json:"direction"`
	Strategy   string    `json:"strategy"`
	Origin     Origin    `json:"origin"`

	EntryPrice decimal.Decimal `json:"entry_price"`
	ExitPrice  decimal.Decimal `json:"exit_price"` // zero while the trade is open
	StopLoss   decimal.Decimal `json:"stop_loss"`
	TakeProfit decimal.Decimal `json:"take_profit"`
	LotSize    decimal.Decimal `json:"lot_size"`
	Commission decimal.Decimal `json:"commission"`
	Swap       decimal.Decimal `json:"swap"`

	// Derived by the calculator.
	GrossResult decimal.Decimal `json:"gross_result"`
	NetResult   decimal.Decimal `json:"net_result"`
	PlannedRR   decimal.Decimal `json:"planned_rr"`

	Emotion string `json:"emotion"`
	Session string `json:"session"`
}

// IsOpen reports whether the trade has no exit price yet.
func (t Trade) IsOpen() bool {
	return !t.ExitPrice.IsPositive()
}

// Outcome classifies the trade by its net result. A zero result counts as a loss.
func (t Trade) Outcome() Outcome {
	if t.NetResult.IsPositive() {
		return OutcomeWon
	}
	return OutcomeLost
}

// Hour returns the hour of day the trade was entered, if known.
func (t Trade) Hour() (int, bool) {
	if t.EntryTime == nil {
		return 0, false
	}
	return t.EntryTime.Hour, true
}
