package journal

import (
	"fmt"
	"strings"
	"time"

	"trading-journal-go/internal/models"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// minLotSize is the smallest accepted position size.
var minLotSize = decimal.RequireFromString("0.001")

// ValidationError rejects a single input field before anything is computed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// TradeInput is a trade as submitted by the user. Derived fields are absent;
// GrossOverride replaces the estimated gross result when set.
type TradeInput struct {
	Date       string `json:"date"`
	EntryTime  string `json:"entry_time"`
	ExitTime   string `json:"exit_time"`
	Instrument string `json:"instrument"`
	Direction  string `json:"direction"`
	Strategy   string `json:"strategy"`
	Origin     string `json:"origin"`

	EntryPrice decimal.Decimal `json:"entry_price"`
	ExitPrice  decimal.Decimal `json:"exit_price"`
	StopLoss   decimal.Decimal `json:"stop_loss"`
	TakeProfit decimal.Decimal `json:"take_profit"`
	LotSize    decimal.Decimal `json:"lot_size"`
	Commission decimal.Decimal `json:"commission"`
	Swap       decimal.Decimal `json:"swap"`

	GrossOverride *decimal.Decimal `json:"gross_override,omitempty"`

	Emotion string `json:"emotion"`
	Session string `json:"session"`
}

// toTrade validates in against the master lists and returns the unstamped
// trade.
func (s *Service) toTrade(in TradeInput) (models.Trade, error) {
	var t models.Trade

	if strings.TrimSpace(in.Date) == "" {
		return t, invalid("date", "is required")
	}
	date, err := time.Parse(dateLayout, strings.TrimSpace(in.Date))
	if err != nil {
		return t, invalid("date", "%q is not a YYYY-MM-DD date", in.Date)
	}
	t.Date = date

	if t.EntryTime, err = optionalClock(in.EntryTime); err != nil {
		return t, invalid("entry_time", "%v", err)
	}
	if t.ExitTime, err = optionalClock(in.ExitTime); err != nil {
		return t, invalid("exit_time", "%v", err)
	}

	inst, ok := s.instrument(in.Instrument)
	if !ok {
		return t, invalid("instrument", "%q is not a known instrument", in.Instrument)
	}
	t.Instrument = inst

	if t.Direction, err = models.ParseDirection(in.Direction); err != nil {
		return t, invalid("direction", "%v", err)
	}

	t.Origin = models.OriginOwn
	if strings.TrimSpace(in.Origin) != "" {
		if t.Origin, err = models.ParseOrigin(in.Origin); err != nil {
			return t, invalid("origin", "%v", err)
		}
	}

	if t.Strategy, ok = member(s.cfg.Strategies, in.Strategy); !ok {
		return t, invalid("strategy", "%q is not a known strategy", in.Strategy)
	}
	if t.Emotion, ok = member(s.cfg.Emotions, in.Emotion); !ok {
		return t, invalid("emotion", "%q is not a known emotion", in.Emotion)
	}
	if t.Session, ok = member(s.cfg.Sessions, in.Session); !ok {
		return t, invalid("session", "%q is not a known session", in.Session)
	}

	switch {
	case !in.EntryPrice.IsPositive():
		return t, invalid("entry_price", "must be positive")
	case in.ExitPrice.IsNegative():
		return t, invalid("exit_price", "must not be negative")
	case in.StopLoss.IsNegative():
		return t, invalid("stop_loss", "must not be negative")
	case in.TakeProfit.IsNegative():
		return t, invalid("take_profit", "must not be negative")
	case in.LotSize.LessThan(minLotSize):
		return t, invalid("lot_size", "must be at least %s", minLotSize)
	case in.Commission.IsNegative():
		return t, invalid("commission", "must not be negative")
	}

	t.EntryPrice = in.EntryPrice
	t.ExitPrice = in.ExitPrice
	t.StopLoss = in.StopLoss
	t.TakeProfit = in.TakeProfit
	t.LotSize = in.LotSize
	t.Commission = in.Commission
	t.Swap = in.Swap
	return t, nil
}

// instrument resolves an id or a display label to the instrument id.
func (s *Service) instrument(v string) (string, bool) {
	key := models.LabelKey(v)
	for _, in := range s.cfg.Instruments {
		if models.LabelKey(in.ID) == key || models.LabelKey(in.Label) == key {
			return in.ID, true
		}
	}
	return "", false
}

func member(list []string, v string) (string, bool) {
	key := models.LabelKey(v)
	if key == "" {
		return "", false
	}
	for _, item := range list {
		if models.LabelKey(item) == key {
			return item, true
		}
	}
	return "", false
}

func optionalClock(s string) (*models.Clock, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	c, err := models.ParseClock(s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
