package search

import "strings"

// Searchable builds the lowercase concatenation stored on every item and
// index record: item name, venue name, city, district, single-spaced. It is
// the text the DB fallback query matches against, so the index and the
// fallback agree on what a term can hit.
func Searchable(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		kept = append(kept, strings.ToLower(p))
	}
	return strings.Join(kept, " ")
}
