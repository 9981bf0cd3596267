package garden

import "strings"

// bookKey builds the composite lookup key for book matching.
func bookKey(title, author string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "|" + strings.ToLower(strings.TrimSpace(author))
}

// MatchBooks reconciles reading-tracker entries against the highlights-source
// catalog. The catalog is indexed once by lowercased-trimmed title|author and
// each tracked book is probed once. Books without a catalog entry keep an
// empty CatalogID.
func MatchBooks(tracked []TrackedBook, catalog []CatalogBook) []MatchedBook {
	index := make(map[string]string, len(catalog))
	for _, c := range catalog {
		key := bookKey(c.Title, c.Author)
		if _, ok := index[key]; !ok {
			index[key] = c.ID
		}
	}
	out := make([]MatchedBook, 0, len(tracked))
	for _, b := range tracked {
		out = append(out, MatchedBook{
			TrackedBook: b,
			CatalogID:   index[bookKey(b.Title, b.Author)],
		})
	}
	return out
}
