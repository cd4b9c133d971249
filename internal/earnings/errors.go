package earnings

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when no earnings page has been published for a day.
// It is an expected outcome, callers should skip the day rather than fail.
var ErrNotFound = errors.New("earnings page does not exist")

// FetchError is returned once every download attempt for a page has failed.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("could not download page %s after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// SchemaError is returned when configured column names cannot be located in the
// header of the earnings table. It means the page layout changed and the
// configuration must be updated, retrying will not help.
type SchemaError struct {
	// Missing holds the configured names that were not located, in configuration order.
	Missing []string
	// Suggestions maps a missing name to the most similar header label, if any.
	Suggestions map[string]string
	// Detail optionally explains where the names were expected.
	Detail string
}

func (e *SchemaError) Error() string {
	var parts []string
	for _, name := range e.Missing {
		suggestion, ok := e.Suggestions[name]
		if ok {
			parts = append(parts, fmt.Sprintf("%q (closest header: %q)", name, suggestion))
			continue
		}
		parts = append(parts, fmt.Sprintf("%q", name))
	}
	detail := e.Detail
	if detail == "" {
		detail = "not found in the earnings table's column headers"
	}
	return fmt.Sprintf("column names %s %s", strings.Join(parts, ", "), detail)
}

// IndexError is returned when a row index is outside of [0, Count).
type IndexError struct {
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("row index %d out of range [0, %d)", e.Index, e.Count)
}

// RowError is returned when a table row is structurally missing a cell the
// schema says it should have.
type RowError struct {
	Row      int
	Column   string
	Position int
	Cells    int
}

func (e *RowError) Error() string {
	return fmt.Sprintf(
		"row %d has %d cells, column %q expected at position %d",
		e.Row, e.Cells, e.Column, e.Position,
	)
}

// FormatError is returned when a row has fewer fields than a formatter requires.
type FormatError struct {
	Fields   int
	Required int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("row has %d fields, formatter requires at least %d", e.Fields, e.Required)
}

// IsFatal returns true for errors that should abort a whole run instead of
// skipping the affected day: configuration/layout mismatches and contract violations.
func IsFatal(err error) bool {
	var schemaErr *SchemaError
	var indexErr *IndexError
	var rowErr *RowError
	var formatErr *FormatError
	return errors.As(err, &schemaErr) ||
		errors.As(err, &indexErr) ||
		errors.As(err, &rowErr) ||
		errors.As(err, &formatErr)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
