package analytics

import (
	"sort"
	"time"

	"trading-journal-go/internal/models"

	"github.com/shopspring/decimal"
)

// EquityPoint is the account state right after one trade. It is derived on
// every pass and never stored.
type EquityPoint struct {
	TradeID       string          `json:"trade_id"`
	Date          time.Time       `json:"date"`
	Time          *models.Clock   `json:"time,omitempty"`
	Net           decimal.Decimal `json:"net"`
	CumulativeNet decimal.Decimal `json:"cumulative_net"`
	Equity        decimal.Decimal `json:"equity"`
	Peak          decimal.Decimal `json:"peak"`
	Drawdown      decimal.Decimal `json:"drawdown"` // equity - peak, never positive
}

// Chronological returns a copy of trades sorted by (date, entry time). Trades
// without an entry time sort as start of day; ties keep their input order.
func Chronological(trades []models.Trade) []models.Trade {
	out := make([]models.Trade, len(trades))
	copy(out, trades)
	sort.SliceStable(out, func(i, j int) bool {
		return before(out[i], out[j])
	})
	return out
}

func before(a, b models.Trade) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return secondsOf(a.EntryTime) < secondsOf(b.EntryTime)
}

func secondsOf(c *models.Clock) int {
	if c == nil {
		return 0
	}
	return c.Seconds()
}

// EquityCurve walks trades in the given order and accumulates equity, running
// peak and drawdown. Callers sort first; see Chronological.
func EquityCurve(ordered []models.Trade, initialCapital decimal.Decimal) []EquityPoint {
	points := make([]EquityPoint, 0, len(ordered))
	running := decimal.Zero
	var peak decimal.Decimal
	for i, t := range ordered {
		running = running.Add(t.NetResult)
		equity := initialCapital.Add(running)
		if i == 0 || equity.GreaterThan(peak) {
			peak = equity
		}
		points = append(points, EquityPoint{
			TradeID:       t.ID,
			Date:          t.Date,
			Time:          t.EntryTime,
			Net:           t.NetResult,
			CumulativeNet: running,
			Equity:        equity,
			Peak:          peak,
			Drawdown:      equity.Sub(peak),
		})
	}
	return points
}

// MaxDrawdown returns the most negative drawdown of the curve, 0 when empty.
func MaxDrawdown(points []EquityPoint) decimal.Decimal {
	worst := decimal.Zero
	for _, p := range points {
		if p.Drawdown.LessThan(worst) {
			worst = p.Drawdown
		}
	}
	return worst
}
