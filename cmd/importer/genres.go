package importer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Genre cells arrive in several inconsistent shapes: Python-style list
// literals ("['Action', 'Comedy']"), the same wrapped in an extra layer
// of quotes, or bare comma-separated text. Parsing strategies are tried
// in order; the first that succeeds wins.

type genreParser func(string) ([]string, bool)

var genreParsers = []genreParser{
	parseGenreListLiteral,
	extractGenreWords,
}

var genreWordPattern = regexp.MustCompile(`[A-Za-z0-9\s\-]+`)

// ParseGenres converts one raw genre cell into an ordered list of
// clean genre names. Duplicates within a cell are preserved here;
// de-duplication happens at insert time via unique-name semantics.
func ParseGenres(raw string) []string {
	s := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(raw, "\r", " "), "\n", " "))
	if s == "" || s == "[]" {
		return nil
	}

	// Remove one layer of wrapping quotes
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	for _, parse := range genreParsers {
		if names, ok := parse(s); ok {
			return names
		}
	}

	return nil
}

// parseGenreListLiteral decodes list literals. Single quotes are
// converted to double quotes first, so Python-style lists parse as
// JSON. Succeeds only when the cell holds an actual list.
func parseGenreListLiteral(s string) ([]string, bool) {
	var elements []any
	if err := json.Unmarshal([]byte(strings.ReplaceAll(s, "'", `"`)), &elements); err != nil {
		return nil, false
	}

	var names []string
	for _, element := range elements {
		if name := strings.TrimSpace(fmt.Sprint(element)); name != "" {
			names = append(names, name)
		}
	}

	return names, true
}

// extractGenreWords recovers names from malformed cells by taking
// every maximal run of letters, digits, spaces, and hyphens. It always
// succeeds, possibly with no names.
func extractGenreWords(s string) ([]string, bool) {
	var names []string
	for _, match := range genreWordPattern.FindAllString(s, -1) {
		if name := strings.TrimSpace(match); name != "" {
			names = append(names, name)
		}
	}

	return names, true
}
