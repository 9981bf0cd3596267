package garden

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchBooks_CompositeKey(t *testing.T) {
	t.Parallel()

	tracked := []TrackedBook{
		{Title: "The Go Programming Language", Author: "Donovan", Status: "read"},
		{Title: "Unknown Book", Author: "Nobody", Status: "reading"},
	}
	catalog := []CatalogBook{
		{ID: "cat-1", Title: "the go programming language ", Author: " donovan"},
	}

	matched := MatchBooks(tracked, catalog)
	require.Len(t, matched, 2)
	require.Equal(t, "cat-1", matched[0].CatalogID)
	require.Empty(t, matched[1].CatalogID)
	require.Equal(t, "reading", matched[1].Status)
}

func TestMatchBooks_SameTitleDifferentAuthor(t *testing.T) {
	t.Parallel()

	tracked := []TrackedBook{{Title: "Collected Essays", Author: "Smith"}}
	catalog := []CatalogBook{{ID: "cat-9", Title: "Collected Essays", Author: "Jones"}}

	matched := MatchBooks(tracked, catalog)
	require.Empty(t, matched[0].CatalogID)
}

func TestMatchBooks_EmptyCatalog(t *testing.T) {
	t.Parallel()

	matched := MatchBooks([]TrackedBook{{Title: "A", Author: "B"}}, nil)
	require.Len(t, matched, 1)
	require.Empty(t, matched[0].CatalogID)
}
