package commands

import (
	"earningsdump/internal/daterange"
	"earningsdump/internal/earnings"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const previewPage = `<html><body>
<table><tr><td>nav</td></tr></table>
<table>
	<thead><tr><th>Symbol</th><th>Company</th><th>Earnings Call Time</th><th>EPS Estimate</th></tr></thead>
	<tbody>
		<tr><td>AAPL</td><td>Apple Inc.</td><td>After Market Close</td><td>2.10</td></tr>
		<tr><td></td><td>Nameless</td><td>Time Not Supplied</td><td>-</td></tr>
		<tr><td>WBA</td><td>Walgreens Boots Alliance, Inc.</td><td>Before Market Open</td><td>0.66</td></tr>
	</tbody>
</table>
</body></html>`

func TestPreviewTable(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(previewPage))
	require.NoError(t, err)

	cfg := withOrder(validConfig())
	date := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	session, err := earnings.Extract(doc, date, cfg.Layout())
	require.NoError(t, err)

	tbl, err := previewTable(session, cfg, 0)
	require.NoError(t, err)
	rendered := tbl.Render()
	require.Contains(t, rendered, "Apple Inc.,AAPL,5-Jan,A,2.10,Add")
	require.Contains(t, rendered, "Walgreens Boots Alliance Inc.,WBA,5-Jan,B,0.66,Add")
	require.NotContains(t, rendered, "Nameless")
	require.Contains(t, rendered, "2 selected")

	tbl, err = previewTable(session, cfg, 1)
	require.NoError(t, err)
	rendered = tbl.Render()
	require.Contains(t, rendered, "1 selected")
	require.NotContains(t, rendered, "WBA")

	cfg.Filter.Field = "ticker"
	_, err = previewTable(session, cfg, 0)
	require.Error(t, err)
}

func TestParseDates(t *testing.T) {
	a := &app{cfg: validConfig()}

	dates, err := a.parseDates([]string{"01/05/2024"}, false)
	require.NoError(t, err)
	require.Len(t, dates, 1)
	require.Equal(t, "2024-01-05", dates[0].Format("2006-01-02"))

	dates, err = a.parseDates([]string{"01/05/2024", "4"}, false)
	require.NoError(t, err)
	require.Len(t, dates, 4)

	dates, err = a.parseDates([]string{"2024-01-05", "4"}, true)
	require.NoError(t, err)
	require.Equal(t, daterange.Weekdays(daterange.Build(dates[0], 4)), dates)
	require.Len(t, dates, 2)

	for _, args := range [][]string{
		nil,
		{"01/05/2024", "4", "extra"},
		{"yesterday"},
		{"01/05/2024", "-1"},
		{"01/05/2024", "many"},
	} {
		_, err := a.parseDates(args, false)
		require.Error(t, err, "%v", args)
		require.Contains(t, err.Error(), "usage: earningsdump dump")
	}
}
