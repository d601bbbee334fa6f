// Package calculator turns raw trade prices into monetary results.
package calculator

import (
	"trading-journal-go/internal/models"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Calculator holds the point-value multiplier table keyed by instrument id.
// Instruments missing from the table use a multiplier of 1.
type Calculator struct {
	multipliers map[string]decimal.Decimal
}

// New builds a Calculator from an instrument id -> multiplier table.
func New(multipliers map[string]float64) *Calculator {
	table := make(map[string]decimal.Decimal, len(multipliers))
	for id, m := range multipliers {
		table[id] = decimal.NewFromFloat(m)
	}
	return &Calculator{multipliers: table}
}

// Multiplier returns the point-value multiplier for an instrument.
func (c *Calculator) Multiplier(instrument string) decimal.Decimal {
	if m, ok := c.multipliers[instrument]; ok {
		return m
	}
	return one
}

// PlannedRR is the distance to take-profit over the distance to stop-loss,
// rounded half-to-even to two places. It is 0 when the stop sits on the entry.
func PlannedRR(entry, stopLoss, takeProfit decimal.Decimal) decimal.Decimal {
	risk := entry.Sub(stopLoss).Abs()
	if risk.IsZero() {
		return decimal.Zero
	}
	reward := entry.Sub(takeProfit).Abs()
	return reward.Div(risk).RoundBank(2)
}

// GrossResult is the price move in the trade's favour times lot size and the
// instrument multiplier.
func (c *Calculator) GrossResult(dir models.Direction, entry, exit, lot decimal.Decimal, instrument string) decimal.Decimal {
	delta := entry.Sub(exit)
	if dir.IsBuy() {
		delta = exit.Sub(entry)
	}
	return delta.Mul(lot).Mul(c.Multiplier(instrument))
}

// NetResult is gross minus commission plus swap. No rounding is applied.
func NetResult(gross, commission, swap decimal.Decimal) decimal.Decimal {
	return gross.Sub(commission).Add(swap)
}

// Estimate proposes a gross result for t. ok is false while the trade has no
// exit price.
func (c *Calculator) Estimate(t models.Trade) (gross decimal.Decimal, ok bool) {
	if t.IsOpen() {
		return decimal.Zero, false
	}
	return c.GrossResult(t.Direction, t.EntryPrice, t.ExitPrice, t.LotSize, t.Instrument), true
}

// Stamp fills the derived fields of t. A non-nil grossOverride replaces the
// estimate; net and planned RR are always recomputed.
func (c *Calculator) Stamp(t *models.Trade, grossOverride *decimal.Decimal) {
	if grossOverride != nil {
		t.GrossResult = *grossOverride
	} else {
		t.GrossResult, _ = c.Estimate(*t)
	}
	t.NetResult = NetResult(t.GrossResult, t.Commission, t.Swap)
	t.PlannedRR = PlannedRR(t.EntryPrice, t.StopLoss, t.TakeProfit)
}
