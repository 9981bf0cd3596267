package garden

// CurationIndex is a lookup table from normalized URL to curated link, built
// once per request. When several curated rows share a normalized URL the
// first one in list order wins, matching the historical merge behavior.
type CurationIndex map[string]CuratedLink

// BuildCurationIndex indexes curated links by normalized URL.
func BuildCurationIndex(curated []CuratedLink) CurationIndex {
	index := make(CurationIndex, len(curated))
	for _, c := range curated {
		key := NormalizeURL(c.URL)
		if _, ok := index[key]; !ok {
			index[key] = c
		}
	}
	return index
}

// Enrich joins one extracted link against the index.
func (idx CurationIndex) Enrich(link ExtractedLink) EnrichedLink {
	enriched := EnrichedLink{
		ID:    link.ID,
		Title: link.Title,
		URL:   link.URL,
	}
	c, ok := idx[NormalizeURL(link.URL)]
	if !ok {
		return enriched
	}
	enriched.IsCurated = true
	enriched.Category = c.Category
	enriched.Notes = deref(c.Notes)
	enriched.CreatorTwitter = deref(c.CreatorTwitter)
	return enriched
}

// MergeWithCuration joins extracted links against the curated set by
// normalized URL equality. Inputs are never mutated, so merging the same
// inputs twice yields identical output.
func MergeWithCuration(links []ExtractedLink, curated []CuratedLink) []EnrichedLink {
	index := BuildCurationIndex(curated)
	out := make([]EnrichedLink, 0, len(links))
	for _, l := range links {
		out = append(out, index.Enrich(l))
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
