package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"trading-journal-go/internal/analytics"
	"trading-journal-go/internal/journal"

	"gopkg.in/yaml.v3"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// render writes v as JSON or YAML, or calls table for the table format. YAML
// is derived from the JSON encoding so both share field names.
func render(out io.Writer, format string, v any, table func() error) error {
	switch strings.ToLower(format) {
	case formatTable, "":
		return table()
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var node yaml.Node
		if err := yaml.Unmarshal(b, &node); err != nil {
			return err
		}
		plainStyle(&node)
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(&node); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q, want table, json or yaml", format)
	}
}

// plainStyle drops the JSON flow and quoting styles.
func plainStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		plainStyle(child)
	}
}

func writeLogTable(out io.Writer, rows []analytics.LedgerRow) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTIME\tINSTRUMENT\tDIRECTION\tSTRATEGY\tLOT\tNET\tOUTCOME\tBALANCE")
	for _, r := range rows {
		clock := "-"
		if r.EntryTime != nil {
			clock = r.EntryTime.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Date.Format("2006-01-02"), clock, r.Instrument, r.Direction, r.Strategy,
			r.LotSize.String(), r.NetResult.StringFixed(2), r.Outcome, r.Balance.StringFixed(2))
	}
	return tw.Flush()
}

func writeSummaryTable(out io.Writer, s analytics.Summary) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Initial capital\t%s\n", s.InitialCapital.StringFixed(2))
	fmt.Fprintf(tw, "Total net\t%s\n", s.TotalNet.StringFixed(2))
	fmt.Fprintf(tw, "Current balance\t%s\n", s.CurrentBalance.StringFixed(2))
	fmt.Fprintf(tw, "Trades\t%d (%d won, %d lost)\n", s.Trades, s.Wins, s.Losses)
	fmt.Fprintf(tw, "Win rate\t%.1f%%\n", s.WinRate)
	fmt.Fprintf(tw, "Profit factor\t%.2f\n", s.ProfitFactor)
	fmt.Fprintf(tw, "Max drawdown\t%s\n", s.MaxDrawdown.StringFixed(2))
	fmt.Fprintf(tw, "Best instrument\t%s (%s)\n", s.BestInstrument.Key, s.BestInstrument.Net.StringFixed(2))
	fmt.Fprintf(tw, "Worst instrument\t%s (%s)\n", s.WorstInstrument.Key, s.WorstInstrument.Net.StringFixed(2))
	if s.BestHour != nil {
		fmt.Fprintf(tw, "Best hour\t%02d:00 (%s)\n", s.BestHour.Hour, s.BestHour.Net.StringFixed(2))
		fmt.Fprintf(tw, "Worst hour\t%02d:00 (%s)\n", s.WorstHour.Hour, s.WorstHour.Net.StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	writeGroups(out, "INSTRUMENT", s.Instruments)
	writeGroups(out, "STRATEGY", s.Strategies)
	writeGroups(out, "SESSION", s.Sessions)

	if len(s.Emotions) > 0 {
		fmt.Fprintln(out)
		tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "EMOTION\tTRADES\tSHARE")
		for _, e := range s.Emotions {
			fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", e.Label, e.Count, e.Share)
		}
		return tw.Flush()
	}
	return nil
}

func writeGroups(out io.Writer, title string, groups []analytics.GroupTotal) {
	if len(groups) == 0 {
		return
	}
	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\tTRADES\tNET\n", title)
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", g.Key, g.Trades, g.Net.StringFixed(2))
	}
	_ = tw.Flush()
}

func writeListsTable(out io.Writer, l journal.Lists) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INSTRUMENT\tLABEL\tMULTIPLIER")
	for _, in := range l.Instruments {
		fmt.Fprintf(tw, "%s\t%s\t%g\n", in.ID, in.Label, in.Multiplier)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nDirections: %s\n", joinAny(l.Directions))
	fmt.Fprintf(out, "Origins:    %s\n", joinAny(l.Origins))
	fmt.Fprintf(out, "Strategies: %s\n", strings.Join(l.Strategies, ", "))
	fmt.Fprintf(out, "Emotions:   %s\n", strings.Join(l.Emotions, ", "))
	fmt.Fprintf(out, "Sessions:   %s\n", strings.Join(l.Sessions, ", "))
	return nil
}

func joinAny[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
