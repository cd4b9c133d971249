package commands

import (
	"earningsdump/internal/earnings"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(probeCmd)
}

var probeCmd = &cobra.Command{
	Use:   "probe <mm/dd/yyyy> [count]",
	Short: "Prints whether the earnings page of each day exists, and how it was last dumped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		dates, err := a.parseDates(args, false)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"day", "url", "exists", "last status"})
		for _, date := range dates {
			url := earnings.MakeURL(a.cfg.Url, date)
			exists := a.fetcher.Exists(ctx, url)

			last := "-"
			if a.ledger != nil {
				entry, ok, err := a.ledger.LastStatus(ctx, date)
				if err != nil {
					return err
				}
				if ok {
					last = fmt.Sprintf("%s (%d/%d)", entry.Status, entry.Written, entry.Rows)
				}
			}

			t.AppendRow(table.Row{date.Format("Mon 2006-01-02"), url, exists, last})
		}
		t.Render()
		return nil
	},
}
