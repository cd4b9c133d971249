package earnings

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

// suggestions below this Jaro-Winkler similarity are not worth showing.
const minSuggestionSimilarity = 0.7

// ResolveColumns returns the position of every name in `desired` inside `headers`.
//
// Headers are scanned once in order and matched by exact value, the first
// occurrence of a label wins. If any desired name is not present, a
// *SchemaError naming every missing name is returned.
func ResolveColumns(headers []string, desired []string) (map[string]int, error) {
	want := make(map[string]struct{}, len(desired))
	for _, name := range desired {
		want[name] = struct{}{}
	}

	found := make(map[string]int, len(want))
	for i, header := range headers {
		if len(found) == len(want) {
			break
		}
		_, wanted := want[header]
		if !wanted {
			continue
		}
		_, seen := found[header]
		if seen {
			continue
		}
		found[header] = i
	}

	if len(found) == len(want) {
		return found, nil
	}

	var missing []string
	reported := make(map[string]struct{})
	for _, name := range desired {
		_, ok := found[name]
		if ok {
			continue
		}
		_, dup := reported[name]
		if dup {
			continue
		}
		reported[name] = struct{}{}
		missing = append(missing, name)
	}

	return nil, &SchemaError{
		Missing:     missing,
		Suggestions: suggest(missing, headers),
	}
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// normalizeLabel lowercases a header label and removes all whitespace.
// It is only used for suggestions, resolution always matches exactly.
func normalizeLabel(label string) string {
	label = strings.ToLower(label)
	return whitespaceRegex.ReplaceAllString(label, "")
}

func suggest(missing []string, headers []string) map[string]string {
	suggestions := make(map[string]string)
	for _, name := range missing {
		normalized := normalizeLabel(name)
		var best float64
		var bestHeader string
		for _, header := range headers {
			similarity := matchr.JaroWinkler(normalized, normalizeLabel(header), false)
			if similarity > best {
				best = similarity
				bestHeader = header
			}
		}
		if best >= minSuggestionSimilarity {
			suggestions[name] = bestHeader
		}
	}
	return suggestions
}
