package htmlutil

import (
	"bytes"
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	xhtml "golang.org/x/net/html"
)

// GetText concatenates every text node under `node` in document order.
func GetText(node *xhtml.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *xhtml.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == xhtml.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CellText returns the trimmed text of the first node in `sel`.
//
// The parser already decodes entities once, entities that were escaped twice
// in the source (ex. `&amp;amp;`) are decoded again here.
func CellText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	text := GetText(sel.Get(0))
	text = strings.TrimSpace(text)
	return html.UnescapeString(text)
}

// NormalizeSpace removes non-printable characters, trims the string and
// collapses runs of inner whitespace into a single space.
func NormalizeSpace(s string) string {
	s = removeNonPrintable(s)
	s = strings.TrimSpace(s)
	return innerWhitespace.ReplaceAllString(s, " ")
}
