package importer

import "strings"

// fieldSynonyms lists the accepted header spellings for each canonical
// field, in priority order: the first synonym present in the header
// wins. Matching is case-insensitive on trimmed header names.
var fieldSynonyms = map[string][]string{
	"mal_id":       {"mal_id", "mal id", "id"},
	"image":        {"image", "image_url", "picture"},
	"title":        {"title", "name"},
	"release_date": {"release", "release_date", "aired"},
	"synopsis":     {"synopsis", "description"},
	"score":        {"score", "rating"},
	"episodes":     {"episodes", "eps"},
	"studio":       {"studio", "studios"},
	"theme":        {"theme", "themes"},
	"genre":        {"genre", "genres"},
}

// Columns is the fixed column-index mapping resolved once per run from
// the header row. An index of -1 means no header matched the field's
// synonyms; its value reads as absent for every row.
type Columns struct {
	MALID    int
	Image    int
	Title    int
	Release  int
	Synopsis int
	Score    int
	Episodes int
	Studio   int
	Theme    int
	Genre    int
}

// ResolveColumns maps a header row to column indexes using the synonym
// table. When the same name appears twice in the header, the later
// column wins.
func ResolveColumns(header []string) Columns {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if key := strings.ToLower(strings.TrimSpace(name)); key != "" {
			index[key] = i
		}
	}

	lookup := func(field string) int {
		for _, synonym := range fieldSynonyms[field] {
			if i, ok := index[synonym]; ok {
				return i
			}
		}
		return -1
	}

	return Columns{
		MALID:    lookup("mal_id"),
		Image:    lookup("image"),
		Title:    lookup("title"),
		Release:  lookup("release_date"),
		Synopsis: lookup("synopsis"),
		Score:    lookup("score"),
		Episodes: lookup("episodes"),
		Studio:   lookup("studio"),
		Theme:    lookup("theme"),
		Genre:    lookup("genre"),
	}
}

// NormalizedHeader returns the trimmed, lowercased header names, the
// form the synonym table matches against.
func NormalizedHeader(header []string) []string {
	names := make([]string, 0, len(header))
	for _, name := range header {
		if key := strings.ToLower(strings.TrimSpace(name)); key != "" {
			names = append(names, key)
		}
	}
	return names
}
