package earnings

import (
	"earningsdump/internal/htmlutil"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// RawRow is one extracted table row, ordered like the Layout's OutputOrder.
// Rows are never modified after extraction, formatters build new slices.
type RawRow []string

// OrderEntry binds an abbreviation used by callers to a table header label.
type OrderEntry struct {
	Abbrev string `json:"abbrev"`
	Column string `json:"column"`
}

// Layout describes how to find and shape the earnings table of a page.
type Layout struct {
	// Locator finds the table, nil means DefaultLocator.
	Locator TableLocator
	// ColumnNames are the header labels that must be present in the table.
	ColumnNames []string
	// OutputOrder is the order fields appear in every RawRow.
	OutputOrder []OrderEntry
}

func (l Layout) locator() TableLocator {
	if l.Locator == nil {
		return DefaultLocator
	}
	return l.Locator
}

// ColumnSchema maps an abbreviation to its position inside a RawRow.
// It is built once per page and never changes afterwards.
type ColumnSchema struct {
	keys  []string
	index map[string]int
}

func newColumnSchema(order []OrderEntry) ColumnSchema {
	schema := ColumnSchema{
		keys:  make([]string, len(order)),
		index: make(map[string]int, len(order)),
	}
	for i, entry := range order {
		schema.keys[i] = entry.Abbrev
		schema.index[entry.Abbrev] = i
	}
	return schema
}

// Index returns the position of `abbrev` in a RawRow.
func (s ColumnSchema) Index(abbrev string) (int, bool) {
	i, ok := s.index[abbrev]
	return i, ok
}

// Keys returns the abbreviations in RawRow order.
func (s ColumnSchema) Keys() []string {
	return append([]string(nil), s.keys...)
}

func (s ColumnSchema) Len() int {
	return len(s.keys)
}

// Session is the extracted earnings table of a single day. It is read-only,
// any number of sequences may iterate it.
type Session struct {
	date            time.Time
	schema          ColumnSchema
	columns         []string
	positions       []int
	rows            *goquery.Selection
	rowCount        int
	additionalPages int
}

// Extract locates the earnings table in `doc` and resolves the layout's columns
// against its header.
//
// When the page has no table (or the table has no body rows) the session has
// zero rows and its schema simply numbers the OutputOrder abbreviations 0..n-1,
// so callers can query it without special casing the empty day.
func Extract(doc *goquery.Document, date time.Time, layout Layout) (*Session, error) {
	session := &Session{
		date:            date,
		schema:          newColumnSchema(layout.OutputOrder),
		additionalPages: AdditionalPages(doc),
	}

	table := layout.locator().Locate(doc)
	if table.Length() == 0 {
		return session, nil
	}

	rows := table.ChildrenFiltered("tbody").ChildrenFiltered("tr")
	if rows.Length() == 0 {
		return session, nil
	}

	var headers []string
	table.ChildrenFiltered("thead").
		ChildrenFiltered("tr").
		First().
		ChildrenFiltered("th").
		Each(func(_ int, th *goquery.Selection) {
			headers = append(headers, htmlutil.NormalizeSpace(htmlutil.CellText(th)))
		})

	resolved, err := ResolveColumns(headers, layout.ColumnNames)
	if err != nil {
		return nil, err
	}

	positions := make([]int, len(layout.OutputOrder))
	columns := make([]string, len(layout.OutputOrder))
	var unconfigured []string
	for i, entry := range layout.OutputOrder {
		pos, ok := resolved[entry.Column]
		if !ok {
			unconfigured = append(unconfigured, entry.Column)
			continue
		}
		positions[i] = pos
		columns[i] = entry.Column
	}
	if len(unconfigured) > 0 {
		return nil, &SchemaError{
			Missing: unconfigured,
			Detail: fmt.Sprintf(
				"are referenced by the output order but are not among the resolved column names (%s)",
				strings.Join(sortedKeys(resolved), ", "),
			),
		}
	}

	session.rows = rows
	session.rowCount = rows.Length()
	session.positions = positions
	session.columns = columns
	return session, nil
}

// Date returns the day the session was extracted for.
func (s *Session) Date() time.Time {
	return s.date
}

// RowCount returns the number of body rows of the table, zero if the page had no table.
func (s *Session) RowCount() int {
	return s.rowCount
}

// Schema returns the abbreviation -> RawRow position mapping.
func (s *Session) Schema() ColumnSchema {
	return s.schema
}

// AdditionalPages is the number of result pages after the first one, derived
// from the page's "N results" annotation. Only the first page is extracted.
func (s *Session) AdditionalPages() int {
	return s.additionalPages
}

// Row extracts row `i`, every call returns a fresh RawRow with identical contents.
func (s *Session) Row(i int) (RawRow, error) {
	if i < 0 || i >= s.rowCount {
		return nil, &IndexError{Index: i, Count: s.rowCount}
	}

	cells := s.rows.Eq(i).Find("td")
	row := make(RawRow, len(s.positions))
	for field, pos := range s.positions {
		if pos >= cells.Length() {
			return nil, &RowError{
				Row:      i,
				Column:   s.columns[field],
				Position: pos,
				Cells:    cells.Length(),
			}
		}
		row[field] = htmlutil.CellText(cells.Eq(pos))
	}
	return row, nil
}

var resultsRegex = regexp.MustCompile(`([\d,]+) results`)

// rows per result page on the earnings calendar.
const pageSize = 100

// AdditionalPages reads the "1-100 of N results" annotation of the calendar and
// returns floor(N / 100), 0 if the annotation is missing.
func AdditionalPages(doc *goquery.Document) int {
	var total int
	doc.Find("div#fin-cal-table span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		text := span.Text()
		if !strings.Contains(text, "results") {
			return true
		}
		groups := resultsRegex.FindStringSubmatch(text)
		if len(groups) < 2 {
			return false
		}
		n, err := strconv.Atoi(strings.ReplaceAll(groups[1], ",", ""))
		if err == nil {
			total = n
		}
		return false
	})
	return total / pageSize
}
