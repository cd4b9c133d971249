package earnings

import (
	"strings"
	"time"
)

// RowFormatter turns an extracted row of a given day into an output line.
type RowFormatter interface {
	Format(row RawRow, date time.Time) (string, error)
}

const (
	TimingSpecified = "D"
	TimingAfter     = "A"
	TimingBefore    = "B"
	TimingUnknown   = "U"
)

// AddMarker is the literal appended to every record by YahooCSVFormatter.
const AddMarker = "Add"

// fields 0 through 3 are fixed by the configured output order:
// company name, symbol, eps estimate, call time.
const yahooMinFields = 4

// Classify maps the call time column of the earnings table to a one letter code.
func Classify(timing string) string {
	switch {
	case timing != "" && timing[0] >= '0' && timing[0] <= '9':
		return TimingSpecified
	case strings.Contains(timing, "After"):
		return TimingAfter
	case strings.Contains(timing, "Before"):
		return TimingBefore
	default:
		return TimingUnknown
	}
}

// YahooCSVFormatter produces the comma separated records consumed downstream:
//
//	name, field1, day (ex. 5-Jan), timing code, field2, field4..., Add
//
// The call time text in field 3 is replaced by its code. Commas are stripped
// from the company name.
type YahooCSVFormatter struct{}

func (YahooCSVFormatter) Format(row RawRow, date time.Time) (string, error) {
	if len(row) < yahooMinFields {
		return "", &FormatError{Fields: len(row), Required: yahooMinFields}
	}

	out := make([]string, 0, len(row)+2)
	out = append(out,
		strings.ReplaceAll(row[0], ",", ""),
		row[1],
		date.Format("2-Jan"),
		Classify(row[3]),
		row[2],
	)
	out = append(out, row[4:]...)
	out = append(out, AddMarker)

	return strings.Join(out, ","), nil
}
