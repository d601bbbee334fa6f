// Package journal is the command and snapshot boundary of the trade journal.
// Commands (submitting a trade) and reads (building a dashboard snapshot) take
// an explicit auth.Session; the service keeps no per-user state.
package journal

import (
	"context"
	"fmt"

	"trading-journal-go/internal/analytics"
	"trading-journal-go/internal/auth"
	"trading-journal-go/internal/calculator"
	"trading-journal-go/internal/config"
	"trading-journal-go/internal/filter"
	"trading-journal-go/internal/models"
	"trading-journal-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service records trades and derives dashboard snapshots.
type Service struct {
	logger *zap.Logger
	store  store.TradeStore
	calc   *calculator.Calculator
	cfg    config.Journal
	newID  func() string
}

// NewService creates a journal service over the given store.
func NewService(st store.TradeStore, cfg config.Journal, logger *zap.Logger) *Service {
	return &Service{
		logger: logger.Named("journal"),
		store:  st,
		calc:   calculator.New(cfg.Multipliers()),
		cfg:    cfg,
		newID:  uuid.NewString,
	}
}

// Lists are the master values offered for each enumerated trade field.
type Lists struct {
	Instruments    []config.Instrument `json:"instruments" yaml:"instruments"`
	Directions     []models.Direction  `json:"directions" yaml:"directions"`
	Origins        []models.Origin     `json:"origins" yaml:"origins"`
	Strategies     []string            `json:"strategies" yaml:"strategies"`
	Emotions       []string            `json:"emotions" yaml:"emotions"`
	Sessions       []string            `json:"sessions" yaml:"sessions"`
	InitialCapital decimal.Decimal     `json:"initial_capital" yaml:"initial_capital"`
}

func (s *Service) Lists() Lists {
	return Lists{
		Instruments:    s.cfg.Instruments,
		Directions:     models.Directions,
		Origins:        models.Origins,
		Strategies:     s.cfg.Strategies,
		Emotions:       s.cfg.Emotions,
		Sessions:       s.cfg.Sessions,
		InitialCapital: decimal.NewFromFloat(s.cfg.InitialCapital),
	}
}

// Preview validates the input and returns the trade as it would be stored,
// without an id or owner. The gross result is the calculator's estimate
// unless the input overrides it.
func (s *Service) Preview(in TradeInput) (models.Trade, error) {
	t, err := s.toTrade(in)
	if err != nil {
		return models.Trade{}, err
	}
	s.calc.Stamp(&t, in.GrossOverride)
	return t, nil
}

// Submit validates, stamps and appends a trade for the session user. A failed
// append is reported and not retried; the caller resubmits.
func (s *Service) Submit(ctx context.Context, session auth.Session, in TradeInput) (models.Trade, error) {
	if session.User.ID == "" {
		return models.Trade{}, auth.ErrNotAuthenticated
	}

	t, err := s.Preview(in)
	if err != nil {
		return models.Trade{}, err
	}
	t.ID = s.newID()
	t.Owner = session.User.ID

	if err := s.store.AppendTrade(ctx, session, t); err != nil {
		s.logger.Warn("Failed to record trade", zap.String("instrument", t.Instrument), zap.Error(err))
		return models.Trade{}, fmt.Errorf("failed to record trade: %w", err)
	}

	s.logger.Info("Trade recorded",
		zap.String("id", t.ID),
		zap.String("instrument", t.Instrument),
		zap.String("net", t.NetResult.String()),
	)
	return t, nil
}

// Query selects what a dashboard snapshot covers. A nil InitialCapital uses
// the configured default; an empty Order means newest first.
type Query struct {
	Selection      filter.Selection
	InitialCapital *decimal.Decimal
	Order          analytics.Order
}

// Available lists the filter choices present in the user's unfiltered trades.
type Available struct {
	Instruments []string `json:"instruments" yaml:"instruments"`
	Strategies  []string `json:"strategies" yaml:"strategies"`
}

// Snapshot is everything the presentation layer renders after a command or a
// filter change.
type Snapshot struct {
	Summary   analytics.Summary     `json:"summary"`
	Log       []analytics.LedgerRow `json:"log"`
	Available Available             `json:"available"`
}

// Dashboard loads the session user's trades, applies the filter and folds
// them into a snapshot.
func (s *Service) Dashboard(ctx context.Context, session auth.Session, q Query) (Snapshot, error) {
	capital := decimal.NewFromFloat(s.cfg.InitialCapital)
	if q.InitialCapital != nil {
		if q.InitialCapital.IsNegative() {
			return Snapshot{}, invalid("capital", "must not be negative")
		}
		capital = *q.InitialCapital
	}

	order := q.Order
	switch order {
	case "":
		order = analytics.OrderDesc
	case analytics.OrderAsc, analytics.OrderDesc:
	default:
		return Snapshot{}, invalid("order", "must be %q or %q", analytics.OrderAsc, analytics.OrderDesc)
	}

	trades, err := s.store.ListTrades(ctx, session)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load trades: %w", err)
	}

	var available Available
	available.Instruments, available.Strategies = filter.Distinct(trades)

	selected := filter.Apply(trades, q.Selection)
	s.logger.Debug("Building snapshot",
		zap.String("user_id", session.User.ID),
		zap.Int("trades", len(trades)),
		zap.Int("selected", len(selected)),
	)

	return Snapshot{
		Summary:   analytics.ComputeSummary(selected, capital),
		Log:       analytics.Ledger(selected, capital, order),
		Available: available,
	}, nil
}
