package commands

import (
	"earningsdump/internal/components/chrono"
	"earningsdump/internal/daterange"
	"earningsdump/internal/earnings"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var previewLimit int

func init() {
	previewCmd.Flags().IntVar(&previewLimit, "limit", 0, "Only show the first n selected rows, 0 shows every row.")
	rootCmd.AddCommand(previewCmd)
}

var previewCmd = &cobra.Command{
	Use:   "preview <mm/dd/yyyy>",
	Short: "Prints the selected rows of a day's earnings table without writing anything.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		date, err := daterange.Parse(args[0], chrono.NY())
		if err != nil {
			return a.usageError(err)
		}

		url := earnings.MakeURL(a.cfg.Url, date)
		if !a.fetcher.Exists(ctx, url) {
			fmt.Printf("Page %s does not exist.\n", url)
			return nil
		}

		session, err := earnings.Open(ctx, a.fetcher, a.cfg.Url, date, a.cfg.Layout())
		if err != nil {
			return err
		}

		t, err := previewTable(session, a.cfg, previewLimit)
		if err != nil {
			return err
		}
		t.Render()
		return nil
	},
}

// previewTable renders the rows the dump command would write along with the
// line it would write for them.
func previewTable(session *earnings.Session, cfg Config, limit int) (table.Writer, error) {
	field, ok := session.Schema().Index(cfg.Filter.Field)
	if !ok {
		return nil, fmt.Errorf("filter field %q is not an output order abbreviation", cfg.Filter.Field)
	}

	header := table.Row{"#"}
	for _, entry := range cfg.OutputOrder {
		header = append(header, fmt.Sprintf("%s (%s)", entry.Abbrev, entry.Column))
	}
	header = append(header, "output")

	t := newTable()
	t.SetTitle(fmt.Sprintf(
		"%s: %d rows, %d more pages not shown",
		session.Date().Format("Mon Jan 2 2006"),
		session.RowCount(),
		session.AdditionalPages(),
	))
	t.AppendHeader(header)

	formatter := earnings.YahooCSVFormatter{}
	shown := 0
	seq := earnings.Select(session, field, cfg.Predicate()())
	for seq.Next() {
		if limit > 0 && shown >= limit {
			break
		}
		row := seq.Row()
		line, err := formatter.Format(row, session.Date())
		if err != nil {
			return nil, err
		}

		out := table.Row{shown + 1}
		for _, value := range row {
			out = append(out, value)
		}
		out = append(out, line)
		t.AppendRow(out)
		shown++
	}
	if err := seq.Err(); err != nil {
		return nil, err
	}

	t.AppendFooter(table.Row{"", fmt.Sprintf("%d selected", shown)})
	return t, nil
}
