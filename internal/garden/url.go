package garden

import "strings"

// NormalizeURL produces the canonical form used for curated-link matching.
// It lowercases the whole string, strips a leading http:// or https://, a
// leading www., and exactly one trailing slash. The result is for equality
// comparison only, never for navigation. Idempotent for any URL that does not
// itself contain a second protocol prefix.
func NormalizeURL(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if rest, ok := strings.CutPrefix(s, "https://"); ok {
		s = rest
	} else if rest, ok := strings.CutPrefix(s, "http://"); ok {
		s = rest
	}
	s = strings.TrimPrefix(s, "www.")
	s = strings.TrimSuffix(s, "/")
	return s
}
