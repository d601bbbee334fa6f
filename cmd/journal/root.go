package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"trading-journal-go/internal/app"
	"trading-journal-go/internal/auth"
	"trading-journal-go/internal/config"
	"trading-journal-go/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli carries what every subcommand needs. An app set before Execute is
// used as is and left open.
type cli struct {
	configDir   string
	sessionFile string
	app         *app.App
	ownsApp     bool
	out         io.Writer
	now         func() time.Time
}

func newRootCmd(c *cli) *cobra.Command {
	if c.now == nil {
		c.now = time.Now
	}

	root := &cobra.Command{
		Use:   "journal",
		Short: "Log discretionary trades and review their performance",
		Long: `Journal records trades under your account and derives equity, drawdown,
win rate, profit factor and per-instrument performance from them.

Sign in once with "journal login"; the session is kept in the configured
session file and refreshed automatically.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.out == nil {
				c.out = cmd.OutOrStdout()
			}
			return c.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if !c.ownsApp {
				return nil
			}
			_ = c.app.Logger.Sync()
			return c.app.Close()
		},
	}
	root.PersistentFlags().StringVar(&c.configDir, "config", "./configs", "directory holding config.yml")

	root.AddCommand(
		newRegisterCmd(c),
		newLoginCmd(c),
		newLogoutCmd(c),
		newListsCmd(c),
		newAddCmd(c),
		newLogCmd(c),
		newSummaryCmd(c),
	)
	return root
}

func (c *cli) setup() error {
	if c.app != nil {
		return nil
	}
	cfg, err := config.LoadConfig(c.configDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize journal: %w", err)
	}
	c.app = a
	c.ownsApp = true
	if c.sessionFile == "" {
		c.sessionFile = cfg.Auth.SessionFile
	}
	return nil
}

// session restores the saved session, refreshing it when needed. An expired
// session is cleared so the next command starts signed out.
func (c *cli) session(ctx context.Context) (auth.Session, error) {
	saved, err := auth.LoadSession(c.sessionFile)
	if err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			return auth.Session{}, errors.New("not signed in, run \"journal login\" first")
		}
		return auth.Session{}, err
	}

	restored, err := auth.Restore(ctx, c.app.Auth, saved, c.now())
	if errors.Is(err, auth.ErrSessionExpired) {
		c.app.Logger.Info("Saved session expired")
		if cerr := auth.ClearSession(c.sessionFile); cerr != nil {
			c.app.Logger.Warn("Failed to clear session file", zap.Error(cerr))
		}
		return auth.Session{}, errors.New("session expired, run \"journal login\" again")
	}
	if err != nil {
		return auth.Session{}, err
	}

	if restored.AccessToken != saved.AccessToken {
		if err := auth.SaveSession(c.sessionFile, restored); err != nil {
			return auth.Session{}, err
		}
	}
	return restored, nil
}
