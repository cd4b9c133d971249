package earnings

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// calendarPage renders a page shaped like the earnings calendar: a layout
// table first, then the data table.
func calendarPage(headers []string, rows [][]string, results int) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString(`<table id="nav"><tr><td>Markets</td><td>News</td></tr></table>`)
	if results > 0 {
		fmt.Fprintf(&b, `<div id="fin-cal-table"><h3><span>Earnings Calendar</span><span>1-100 of %s results</span></h3></div>`, groupThousands(results))
	}
	b.WriteString("<table><thead><tr>")
	for _, h := range headers {
		fmt.Fprintf(&b, "<th><span>%s</span></th>", h)
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			fmt.Fprintf(&b, "<td> %s </td>", cell)
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table></body></html>")
	return b.String()
}

func groupThousands(n int) string {
	s := fmt.Sprint(n)
	var out []string
	for len(s) > 3 {
		out = append([]string{s[len(s)-3:]}, out...)
		s = s[:len(s)-3]
	}
	out = append([]string{s}, out...)
	return strings.Join(out, ",")
}

func parse(t testing.TB, page string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

var testDay = time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)

var testHeaders = []string{"Symbol", "Company", "Earnings Call Time", "EPS Estimate", "Reported EPS", "Surprise(%)"}

var testRows = [][]string{
	{"AAPL", "Apple Inc.", "After Market Close", "2.10", "2.18", "3.81"},
	{"WBA", "Walgreens Boots Alliance, Inc.", "Before Market Open", "0.66", "0.66", "0"},
	{"", "Placeholder &amp;amp; Co", "Time Not Supplied", "-", "-", "-"},
	{"AAPL", "Apple Inc. (dup)", "4:00PM EST", "2.10", "-", "-"},
}

var testLayout = Layout{
	ColumnNames: []string{"Company", "Symbol", "EPS Estimate", "Earnings Call Time"},
	OutputOrder: []OrderEntry{
		{Abbrev: "nm", Column: "Company"},
		{Abbrev: "sym", Column: "Symbol"},
		{Abbrev: "eps", Column: "EPS Estimate"},
		{Abbrev: "tm", Column: "Earnings Call Time"},
	},
}
