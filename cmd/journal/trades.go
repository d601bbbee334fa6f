package main

import (
	"fmt"
	"strings"

	"trading-journal-go/internal/analytics"
	"trading-journal-go/internal/filter"
	"trading-journal-go/internal/journal"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type tradeFlags struct {
	date, entryTime, exitTime     string
	instrument, direction, origin string
	strategy, emotion, session    string
	entry, exit, stopLoss, take   string
	lot, commission, swap, gross  string
}

func newAddCmd(c *cli) *cobra.Command {
	var f tradeFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a trade",
		Long: `Record a trade. Gross result is estimated from the price move, lot size and
instrument multiplier unless --gross is given. Leave --exit at 0 for a trade
that is still open.

Example:
  journal add --instrument XAUUSD --direction BUY --strategy Pullback \
    --entry 2000 --exit 2005 --sl 1995 --tp 2010 --lot 0.1 --commission 2 \
    --emotion Confiado --session Londres`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := f.input(c)
			if err != nil {
				return err
			}
			session, err := c.session(cmd.Context())
			if err != nil {
				return err
			}
			trade, err := c.app.Journal.Submit(cmd.Context(), session, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Recorded %s %s %s: gross %s, net %s (%s), planned R:R %s\n",
				trade.Date.Format("2006-01-02"), trade.Instrument, trade.Direction,
				trade.GrossResult.StringFixed(2), trade.NetResult.StringFixed(2), trade.Outcome(),
				trade.PlannedRR.StringFixed(2))
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.date, "date", "", "trade date YYYY-MM-DD (default today)")
	fl.StringVar(&f.entryTime, "entry-time", "", "entry time HH:MM[:SS]")
	fl.StringVar(&f.exitTime, "exit-time", "", "exit time HH:MM[:SS]")
	fl.StringVarP(&f.instrument, "instrument", "i", "", "instrument id or label (required)")
	fl.StringVarP(&f.direction, "direction", "d", "", "BUY, SELL, BUY LIMIT or SELL LIMIT (required)")
	fl.StringVarP(&f.strategy, "strategy", "s", "", "strategy (required)")
	fl.StringVar(&f.origin, "origin", "OWN", "OWN, SIGNAL, MENTORSHIP or BOT")
	fl.StringVar(&f.entry, "entry", "", "entry price (required)")
	fl.StringVar(&f.exit, "exit", "0", "exit price, 0 while open")
	fl.StringVar(&f.stopLoss, "sl", "0", "stop loss price")
	fl.StringVar(&f.take, "tp", "0", "take profit price")
	fl.StringVar(&f.lot, "lot", "", "lot size (required)")
	fl.StringVar(&f.commission, "commission", "0", "commission paid")
	fl.StringVar(&f.swap, "swap", "0", "swap, signed")
	fl.StringVar(&f.gross, "gross", "", "gross result override")
	fl.StringVar(&f.emotion, "emotion", "", "emotion (required)")
	fl.StringVar(&f.session, "session", "", "market session (required)")
	for _, name := range []string{"instrument", "direction", "strategy", "entry", "lot", "emotion", "session"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (f *tradeFlags) input(c *cli) (journal.TradeInput, error) {
	in := journal.TradeInput{
		Date:       f.date,
		EntryTime:  f.entryTime,
		ExitTime:   f.exitTime,
		Instrument: f.instrument,
		Direction:  f.direction,
		Strategy:   f.strategy,
		Origin:     f.origin,
		Emotion:    f.emotion,
		Session:    f.session,
	}
	if in.Date == "" {
		in.Date = c.now().Format("2006-01-02")
	}

	for _, field := range []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"entry", f.entry, &in.EntryPrice},
		{"exit", f.exit, &in.ExitPrice},
		{"sl", f.stopLoss, &in.StopLoss},
		{"tp", f.take, &in.TakeProfit},
		{"lot", f.lot, &in.LotSize},
		{"commission", f.commission, &in.Commission},
		{"swap", f.swap, &in.Swap},
	} {
		v, err := parseDecimal(field.name, field.raw)
		if err != nil {
			return in, err
		}
		*field.dst = v
	}

	if strings.TrimSpace(f.gross) != "" {
		g, err := parseDecimal("gross", f.gross)
		if err != nil {
			return in, err
		}
		in.GrossOverride = &g
	}
	return in, nil
}

func parseDecimal(flag, raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %q is not a number", flag, raw)
	}
	return v, nil
}

type queryFlags struct {
	instruments []string
	strategies  []string
	capital     string
	order       string
	format      string
}

func (f *queryFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringSliceVarP(&f.instruments, "instrument", "i", nil, "only these instruments (repeatable)")
	fl.StringSliceVarP(&f.strategies, "strategy", "s", nil, "only these strategies (repeatable)")
	fl.StringVar(&f.capital, "capital", "", "initial capital (default from config)")
	fl.StringVarP(&f.format, "format", "f", formatTable, "output format: table, json or yaml")
}

func (f *queryFlags) registerOrder(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.order, "order", string(analytics.OrderDesc), "log order, asc or desc")
}

func (f *queryFlags) query() (journal.Query, error) {
	q := journal.Query{
		Selection: filter.Selection{Instruments: f.instruments, Strategies: f.strategies},
		Order:     analytics.Order(f.order),
	}
	if f.capital != "" {
		capital, err := parseDecimal("capital", f.capital)
		if err != nil {
			return q, err
		}
		q.InitialCapital = &capital
	}
	return q, nil
}

func newLogCmd(c *cli) *cobra.Command {
	var f queryFlags
	cmd := &cobra.Command{
		Use:   "log",
		Short: "List trades with the running balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := f.query()
			if err != nil {
				return err
			}
			session, err := c.session(cmd.Context())
			if err != nil {
				return err
			}
			snap, err := c.app.Journal.Dashboard(cmd.Context(), session, q)
			if err != nil {
				return err
			}
			return render(c.out, f.format, snap.Log, func() error {
				return writeLogTable(c.out, snap.Log)
			})
		},
	}
	f.register(cmd)
	f.registerOrder(cmd)
	return cmd
}
