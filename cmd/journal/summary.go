package main

import (
	"trading-journal-go/internal/analytics"
	"trading-journal-go/internal/journal"

	"github.com/spf13/cobra"
)

func newSummaryCmd(c *cli) *cobra.Command {
	var f queryFlags
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show performance figures for the selected trades",
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
			payload := struct {
				Summary   analytics.Summary `json:"summary"`
				Available journal.Available `json:"available"`
			}{snap.Summary, snap.Available}
			return render(c.out, f.format, payload, func() error {
				return writeSummaryTable(c.out, snap.Summary)
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newListsCmd(c *cli) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Show the accepted instruments, strategies, emotions and sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			lists := c.app.Journal.Lists()
			return render(c.out, format, lists, func() error {
				return writeListsTable(c.out, lists)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, json or yaml")
	return cmd
}
