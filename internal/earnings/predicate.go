package earnings

import (
	"regexp"
	"strings"
)

// Predicate decides whether a row is selected based on one of its fields.
type Predicate func(value string) bool

// Any selects every row.
func Any(string) bool {
	return true
}

// NonEmpty selects rows whose field is not blank.
func NonEmpty(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Unique returns a predicate selecting only the first row carrying a given value.
// The returned predicate is stateful, build a new one for every sequence.
func Unique() Predicate {
	seen := make(map[string]struct{})
	return func(value string) bool {
		_, ok := seen[value]
		if ok {
			return false
		}
		seen[value] = struct{}{}
		return true
	}
}

// AllowList selects rows whose field is one of `values`.
func AllowList(values ...string) Predicate {
	allowed := make(map[string]struct{}, len(values))
	for _, v := range values {
		allowed[v] = struct{}{}
	}
	return func(value string) bool {
		_, ok := allowed[value]
		return ok
	}
}

// MatchPattern selects rows whose field matches `pattern`.
func MatchPattern(pattern *regexp.Regexp) Predicate {
	return func(value string) bool {
		return pattern.MatchString(value)
	}
}

// All selects rows accepted by every predicate, evaluated in order and short circuiting.
// Stateful predicates after a rejecting one are not consulted.
func All(preds ...Predicate) Predicate {
	return func(value string) bool {
		for _, p := range preds {
			if !p(value) {
				return false
			}
		}
		return true
	}
}
