// Package analytics folds a trade sequence into dashboard figures. Every
// function here is pure: the same trades and capital give the same result.
package analytics

import (
	"trading-journal-go/internal/models"

	"github.com/shopspring/decimal"
)

// Summary holds everything the dashboard renders for one trade set.
type Summary struct {
	InitialCapital decimal.Decimal `json:"initial_capital"`
	TotalNet       decimal.Decimal `json:"total_net"`
	CurrentBalance decimal.Decimal `json:"current_balance"`

	Trades  int     `json:"trades"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"win_rate"` // percent

	GrossProfit  decimal.Decimal `json:"gross_profit"`
	GrossLoss    decimal.Decimal `json:"gross_loss"` // absolute value
	ProfitFactor float64         `json:"profit_factor"`

	Equity      []EquityPoint   `json:"equity"`
	MaxDrawdown decimal.Decimal `json:"max_drawdown"`

	Instruments     []GroupTotal `json:"instruments"`
	BestInstrument  Extreme      `json:"best_instrument"`
	WorstInstrument Extreme      `json:"worst_instrument"`
	Strategies      []GroupTotal `json:"strategies"`
	Sessions        []GroupTotal `json:"sessions"`

	Hours     []HourTotal  `json:"hours"`
	BestHour  *HourTotal   `json:"best_hour,omitempty"`
	WorstHour *HourTotal   `json:"worst_hour,omitempty"`
	Emotions  []LabelCount `json:"emotions"`
}

// ComputeSummary computes the dashboard figures for trades, given in any order.
//
// A zero net result counts as a loss. Win rate is 0 on an empty set, and the
// profit factor is 0 when there are no losses to divide by.
func ComputeSummary(trades []models.Trade, initialCapital decimal.Decimal) Summary {
	ordered := Chronological(trades)

	s := Summary{
		InitialCapital: initialCapital,
		TotalNet:       decimal.Zero,
		GrossProfit:    decimal.Zero,
		GrossLoss:      decimal.Zero,
		Trades:         len(ordered),
	}

	lossSum := decimal.Zero
	for _, t := range ordered {
		s.TotalNet = s.TotalNet.Add(t.NetResult)
		if t.NetResult.IsPositive() {
			s.Wins++
			s.GrossProfit = s.GrossProfit.Add(t.NetResult)
		} else {
			s.Losses++
			lossSum = lossSum.Add(t.NetResult)
		}
	}
	s.GrossLoss = lossSum.Abs()
	s.CurrentBalance = initialCapital.Add(s.TotalNet)

	if s.Trades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Trades) * 100
	}
	if s.Losses > 0 && !s.GrossLoss.IsZero() {
		s.ProfitFactor = s.GrossProfit.Div(s.GrossLoss).InexactFloat64()
	}

	s.Equity = EquityCurve(ordered, initialCapital)
	s.MaxDrawdown = MaxDrawdown(s.Equity)

	instruments := GroupBy(ordered, func(t models.Trade) string { return t.Instrument })
	s.BestInstrument, s.WorstInstrument = Extremes(instruments)
	s.Instruments = byNetDesc(instruments)
	s.Strategies = byNetDesc(GroupBy(ordered, func(t models.Trade) string { return t.Strategy }))
	s.Sessions = byNetDesc(GroupBy(ordered, func(t models.Trade) string { return t.Session }))

	s.Hours = Hourly(ordered)
	s.BestHour, s.WorstHour = hourExtremes(s.Hours)

	s.Emotions = Frequencies(ordered, func(t models.Trade) string { return t.Emotion })

	return s
}
