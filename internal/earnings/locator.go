package earnings

import (
	"github.com/PuerkitoBio/goquery"
)

// TableLocator finds the earnings table inside a parsed page. An empty
// selection means the page carries no table.
type TableLocator interface {
	Locate(doc *goquery.Document) *goquery.Selection
}

// IndexLocator picks the n-th (0 based) <table> in document order.
//
// The earnings page does not put any stable attribute on its data table, so the
// default locator depends purely on it being the second table on the page.
// Any layout change that adds or removes a table before it silently breaks
// extraction, which usually surfaces as a *SchemaError.
type IndexLocator struct {
	Index int
}

// DefaultLocator is the second table on the page.
var DefaultLocator = IndexLocator{Index: 1}

func (l IndexLocator) Locate(doc *goquery.Document) *goquery.Selection {
	return doc.Find("table").Eq(l.Index)
}

// SelectorLocator picks the first <table> matched by a CSS selector, it can be
// used instead of IndexLocator once a stable selector is known.
type SelectorLocator struct {
	Selector string
}

func (l SelectorLocator) Locate(doc *goquery.Document) *goquery.Selection {
	return doc.Find(l.Selector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return goquery.NodeName(s) == "table"
	}).First()
}
