// Package store persists trade records per user. It translates between the
// external row schema and models.Trade and does no monetary computation.
package store

import (
	"context"
	"errors"
	"fmt"

	"trading-journal-go/internal/auth"
	"trading-journal-go/internal/models"
)

var (
	// ErrUnavailable means the backing store could not be reached.
	ErrUnavailable = errors.New("trade store unavailable")
	// ErrRejected means the store refused the write, e.g. a constraint violation.
	ErrRejected = errors.New("trade store rejected the write")
	// ErrUnauthorized means the store refused the session's credentials.
	ErrUnauthorized = errors.New("trade store refused the session")
)

// TradeStore lists and appends the trades of the session's user.
type TradeStore interface {
	// ListTrades returns every trade owned by the session user, newest date
	// first. Callers must not rely on the order.
	ListTrades(ctx context.Context, session auth.Session) ([]models.Trade, error)
	// AppendTrade stores one already stamped trade. It is never retried.
	AppendTrade(ctx context.Context, session auth.Session, trade models.Trade) error
}

// ownedRow checks the session and returns the row for trade owned by the
// session user.
func ownedRow(vocab Vocabulary, session auth.Session, trade models.Trade) (tradeRow, error) {
	if session.User.ID == "" {
		return tradeRow{}, auth.ErrNotAuthenticated
	}
	if trade.Owner != "" && trade.Owner != session.User.ID {
		return tradeRow{}, fmt.Errorf("%w: trade belongs to another user", ErrRejected)
	}
	trade.Owner = session.User.ID
	return vocab.toRow(trade), nil
}
