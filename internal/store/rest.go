package store

import (
	"context"
	"fmt"
	"net/http"

	"trading-journal-go/internal/auth"
	"trading-journal-go/internal/models"
	"trading-journal-go/internal/supabase"

	"go.uber.org/zap"
)

// RestStore keeps trades in a table of the hosted row API. Row level
// security on the backend scopes rows to the bearer token's user; the
// user_id filter makes that explicit.
type RestStore struct {
	client *supabase.Client
	table  string
	vocab  Vocabulary
	logger *zap.Logger
}

var _ TradeStore = (*RestStore)(nil)

func NewRestStore(client *supabase.Client, table string, vocab Vocabulary, logger *zap.Logger) *RestStore {
	return &RestStore{client: client, table: table, vocab: vocab, logger: logger.Named("store")}
}

func (s *RestStore) ListTrades(ctx context.Context, session auth.Session) ([]models.Trade, error) {
	if !session.Valid() {
		return nil, auth.ErrNotAuthenticated
	}

	var rows []tradeRow
	q := supabase.Query{
		Eq:    map[string]string{"user_id": session.User.ID},
		Order: "fecha.desc",
	}
	if err := s.client.SelectRows(ctx, s.table, session.AccessToken, q, &rows); err != nil {
		return nil, mapRemoteError(err)
	}

	s.logger.Debug("Loaded trades", zap.String("user_id", session.User.ID), zap.Int("rows", len(rows)))
	return translateRows(rows, s.vocab, s.logger), nil
}

func (s *RestStore) AppendTrade(ctx context.Context, session auth.Session, trade models.Trade) error {
	if !session.Valid() {
		return auth.ErrNotAuthenticated
	}
	row, err := ownedRow(s.vocab, session, trade)
	if err != nil {
		return err
	}
	if err := s.client.InsertRow(ctx, s.table, session.AccessToken, row); err != nil {
		return mapRemoteError(err)
	}
	return nil
}

func mapRemoteError(err error) error {
	switch {
	case supabase.IsUnavailable(err):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	case supabase.StatusOf(err) == http.StatusUnauthorized, supabase.StatusOf(err) == http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	case supabase.StatusOf(err) != 0:
		return fmt.Errorf("%w: %w", ErrRejected, err)
	default:
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
}

// translateRows converts rows in order, skipping rows without a usable date.
func translateRows(rows []tradeRow, vocab Vocabulary, logger *zap.Logger) []models.Trade {
	trades := make([]models.Trade, 0, len(rows))
	for _, row := range rows {
		t, err := vocab.fromRow(row)
		if err != nil {
			logger.Warn("Skipping unreadable trade row", zap.String("id", row.ID), zap.Error(err))
			continue
		}
		trades = append(trades, t)
	}
	return trades
}
