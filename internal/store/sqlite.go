package store

import (
	"context"
	"errors"
	"fmt"

	"trading-journal-go/internal/auth"
	"trading-journal-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SQLiteStore keeps trades in a local table through gorm.
type SQLiteStore struct {
	db     *gorm.DB
	table  string
	vocab  Vocabulary
	logger *zap.Logger
}

var _ TradeStore = (*SQLiteStore)(nil)

// NewSQLiteStore migrates the trade table and returns the store.
func NewSQLiteStore(db *gorm.DB, table string, vocab Vocabulary, logger *zap.Logger) (*SQLiteStore, error) {
	if err := db.Table(table).AutoMigrate(&tradeRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate %s: %w", table, err)
	}
	return &SQLiteStore{db: db, table: table, vocab: vocab, logger: logger.Named("store")}, nil
}

func (s *SQLiteStore) ListTrades(ctx context.Context, session auth.Session) ([]models.Trade, error) {
	if session.User.ID == "" {
		return nil, auth.ErrNotAuthenticated
	}

	var rows []tradeRow
	err := s.db.WithContext(ctx).Table(s.table).
		Where("user_id = ?", session.User.ID).
		Order("fecha desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	s.logger.Debug("Loaded trades", zap.String("user_id", session.User.ID), zap.Int("rows", len(rows)))
	return translateRows(rows, s.vocab, s.logger), nil
}

func (s *SQLiteStore) AppendTrade(ctx context.Context, session auth.Session, trade models.Trade) error {
	row, err := ownedRow(s.vocab, session, trade)
	if err != nil {
		return err
	}
	if row.ID == "" {
		return fmt.Errorf("%w: trade id is required", ErrRejected)
	}

	if err := s.db.WithContext(ctx).Table(s.table).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			errors.Is(err, gorm.ErrCheckConstraintViolated) ||
			errors.Is(err, gorm.ErrForeignKeyViolated) {
			return fmt.Errorf("%w: %w", ErrRejected, err)
		}
		s.logger.Error("Failed to insert trade", zap.String("id", row.ID), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}
