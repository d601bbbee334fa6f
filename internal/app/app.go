// Package app builds the journal's components from configuration.
package app

import (
	"fmt"

	"trading-journal-go/internal/auth"
	"trading-journal-go/internal/config"
	"trading-journal-go/internal/database"
	"trading-journal-go/internal/journal"
	"trading-journal-go/internal/store"
	"trading-journal-go/internal/supabase"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the wired components shared by the HTTP server and the CLI.
type App struct {
	Config  config.Config
	Logger  *zap.Logger
	Auth    auth.Provider
	Store   store.TradeStore
	Journal *journal.Service

	db *gorm.DB
}

// New wires the store and identity provider selected by cfg.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	var backend *supabase.Client
	if cfg.Store.Driver == config.StoreDriverREST || cfg.Auth.Driver == config.AuthDriverRemote {
		backend = supabase.NewClient(&cfg.Backend, logger)
	}
	if cfg.Store.Driver == config.StoreDriverSQLite || cfg.Auth.Driver == config.AuthDriverLocal {
		db, err := database.NewDatabase(cfg.Store.DSN, logger)
		if err != nil {
			return nil, err
		}
		a.db = db
		logger.Info("Database connection successful", zap.String("dsn", cfg.Store.DSN))
	}

	vocab := store.NewVocabulary(cfg.Journal)
	switch cfg.Store.Driver {
	case config.StoreDriverREST:
		a.Store = store.NewRestStore(backend, cfg.Store.Table, vocab, logger)
	case config.StoreDriverSQLite:
		st, err := store.NewSQLiteStore(a.db, cfg.Store.Table, vocab, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Store = st
	default:
		a.Close()
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	switch cfg.Auth.Driver {
	case config.AuthDriverRemote:
		a.Auth = auth.NewRemoteProvider(backend, logger)
	case config.AuthDriverLocal:
		p, err := auth.NewLocalProvider(a.db, cfg.Auth, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Auth = p
	default:
		a.Close()
		return nil, fmt.Errorf("unknown auth driver %q", cfg.Auth.Driver)
	}

	a.Journal = journal.NewService(a.Store, cfg.Journal, logger)
	logger.Info("Journal ready",
		zap.String("store", cfg.Store.Driver),
		zap.String("auth", cfg.Auth.Driver),
	)
	return a, nil
}

// Close releases the database handle, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
