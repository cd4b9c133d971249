package earnings

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestExtractOrdersRowsByOutputOrder(t *testing.T) {
	doc := parse(t, calendarPage(testHeaders, testRows, 0))

	session, err := Extract(doc, testDay, testLayout)
	require.NoError(t, err)
	require.Equal(t, len(testRows), session.RowCount())
	require.Equal(t, testDay, session.Date())
	require.Equal(t, []string{"nm", "sym", "eps", "tm"}, session.Schema().Keys())

	expect := []RawRow{
		{"Apple Inc.", "AAPL", "2.10", "After Market Close"},
		{"Walgreens Boots Alliance, Inc.", "WBA", "0.66", "Before Market Open"},
		{"Placeholder & Co", "", "-", "Time Not Supplied"},
		{"Apple Inc. (dup)", "AAPL", "2.10", "4:00PM EST"},
	}
	for i, want := range expect {
		row, err := session.Row(i)
		require.NoError(t, err)
		if diff := cmp.Diff(want, row); diff != "" {
			t.Fatalf("row %d: %s", i, diff)
		}
	}
}

func TestExtractIndependentOfHeaderOrder(t *testing.T) {
	headers := []string{"Earnings Call Time", "EPS Estimate", "Company", "Symbol"}
	rows := [][]string{{"After Market Close", "1.00", "Foo Corp", "FOO"}}

	session, err := Extract(parse(t, calendarPage(headers, rows, 0)), testDay, testLayout)
	require.NoError(t, err)

	row, err := session.Row(0)
	require.NoError(t, err)
	require.Equal(t, RawRow{"Foo Corp", "FOO", "1.00", "After Market Close"}, row)

	i, ok := session.Schema().Index("tm")
	require.True(t, ok)
	require.Equal(t, 3, i)
}

func TestRowIsIdempotent(t *testing.T) {
	session, err := Extract(parse(t, calendarPage(testHeaders, testRows, 0)), testDay, testLayout)
	require.NoError(t, err)

	for i := 0; i < session.RowCount(); i++ {
		first, err := session.Row(i)
		require.NoError(t, err)
		first[0] = "mutated"

		second, err := session.Row(i)
		require.NoError(t, err)
		third, err := session.Row(i)
		require.NoError(t, err)
		require.Equal(t, second, third)
		require.NotEqual(t, "mutated", second[0])
	}
}

func TestRowOutOfRange(t *testing.T) {
	session, err := Extract(parse(t, calendarPage(testHeaders, testRows, 0)), testDay, testLayout)
	require.NoError(t, err)

	for _, i := range []int{-1, len(testRows), 100} {
		_, err := session.Row(i)
		var indexErr *IndexError
		require.ErrorAs(t, err, &indexErr)
		require.Equal(t, len(testRows), indexErr.Count)
		require.True(t, IsFatal(err))
	}
}

func TestRowMissingCells(t *testing.T) {
	rows := [][]string{
		{"AAPL", "Apple Inc.", "After Market Close", "2.10"},
		{"MSFT", "Microsoft"},
	}
	session, err := Extract(parse(t, calendarPage(testHeaders, rows, 0)), testDay, testLayout)
	require.NoError(t, err)

	_, err = session.Row(0)
	require.NoError(t, err)

	_, err = session.Row(1)
	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	require.Equal(t, 1, rowErr.Row)
	require.Equal(t, 2, rowErr.Cells)
	require.True(t, IsFatal(err))
}

func TestExtractWithoutTable(t *testing.T) {
	cases := []struct {
		name string
		page string
	}{
		{
			name: "no tables",
			page: "<html><body><p>We couldn't find any results.</p></body></html>",
		},
		{
			name: "only the layout table",
			page: `<html><body><table><tr><td>Markets</td></tr></table></body></html>`,
		},
		{
			name: "empty body",
			page: calendarPage(testHeaders, nil, 0),
		},
		{
			name: "empty body and unknown headers",
			page: calendarPage([]string{"Something", "Else"}, nil, 0),
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			session, err := Extract(parse(t, test.page), testDay, testLayout)
			require.NoError(t, err)
			require.Equal(t, 0, session.RowCount())

			schema := session.Schema()
			require.Equal(t, 4, schema.Len())
			for i, key := range []string{"nm", "sym", "eps", "tm"} {
				pos, ok := schema.Index(key)
				require.True(t, ok)
				require.Equal(t, i, pos)
			}

			_, err = session.Row(0)
			require.ErrorAs(t, err, new(*IndexError))
		})
	}
}

func TestExtractSchemaMismatch(t *testing.T) {
	headers := []string{"Symbol", "Company", "EPS", "Time"}
	rows := [][]string{{"AAPL", "Apple Inc.", "2.10", "After Market Close"}}
	doc := parse(t, calendarPage(headers, rows, 0))

	// output order references a column that is not among the configured names
	layout := Layout{
		ColumnNames: []string{"Company", "Time"},
		OutputOrder: []OrderEntry{
			{Abbrev: "sym", Column: "Symbol"},
			{Abbrev: "nm", Column: "Company"},
			{Abbrev: "tm", Column: "Time"},
		},
	}
	_, err := Extract(doc, testDay, layout)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.Equal(t, []string{"Symbol"}, schemaErr.Missing)
	require.True(t, IsFatal(err))

	// a configured name the page no longer has
	layout = testLayout
	_, err = Extract(doc, testDay, layout)
	require.ErrorAs(t, err, &schemaErr)
	require.Equal(t, []string{"EPS Estimate", "Earnings Call Time"}, schemaErr.Missing)
}

func TestSelectorLocator(t *testing.T) {
	page := `<html><body>
		<table><tbody><tr><td>layout</td></tr></tbody></table>
		<table><tbody><tr><td>layout</td></tr></tbody></table>
		<div id="cal">` + calendarPage(testHeaders, testRows[:1], 0) + `</div>
	</body></html>`
	doc := parse(t, page)

	layout := testLayout
	// the data table is the second table inside #cal
	layout.Locator = SelectorLocator{Selector: "#cal table:nth-of-type(2)"}

	session, err := Extract(doc, testDay, layout)
	require.NoError(t, err)
	require.Equal(t, 1, session.RowCount())

	row, err := session.Row(0)
	require.NoError(t, err)
	require.Equal(t, "AAPL", row[1])
}

func TestAdditionalPages(t *testing.T) {
	cases := []struct {
		results int
		expect  int
	}{
		{results: 0, expect: 0},
		{results: 42, expect: 0},
		{results: 100, expect: 1},
		{results: 250, expect: 2},
		{results: 1234, expect: 12},
	}

	for _, test := range cases {
		doc := parse(t, calendarPage(testHeaders, testRows, test.results))
		require.Equal(t, test.expect, AdditionalPages(doc), "results %d", test.results)

		session, err := Extract(doc, testDay, testLayout)
		require.NoError(t, err)
		require.Equal(t, test.expect, session.AdditionalPages())
	}
}

func TestExtractNormalizesHeaderWhitespace(t *testing.T) {
	page := `<html><body><table></table><table>
		<thead><tr>
			<th>Symbol</th>
			<th>
				Company
			</th>
			<th>Earnings   Call
				Time</th>
			<th><span>EPS</span> <span>Estimate</span></th>
		</tr></thead>
		<tbody><tr><td>AAPL</td><td>Apple Inc.</td><td>After Market Close</td><td>2.10</td></tr></tbody>
	</table></body></html>`

	session, err := Extract(parse(t, page), testDay, testLayout)
	require.NoError(t, err)

	row, err := session.Row(0)
	require.NoError(t, err)
	require.Equal(t, RawRow{"Apple Inc.", "AAPL", "2.10", "After Market Close"}, row)
}
