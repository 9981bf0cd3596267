package garden

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractURL_ReturnsFirstMatch(t *testing.T) {
	t.Parallel()

	body := "cool tool\nhttps://first.example.com and also https://second.example.com"
	require.Equal(t, "https://first.example.com", ExtractURL(body))
}

func TestExtractURL_NoHTTPSubstring(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", ExtractURL("just some words"))
	require.Equal(t, "", ExtractURL(""))
	require.Equal(t, "", ExtractURL("   \n\t  "))
}

func TestExtractTitle(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Untitled", ExtractTitle(""))
	require.Equal(t, "Line one", ExtractTitle("Line one\nLine two"))
	require.Equal(t, "single line", ExtractTitle("single line"))
	require.Equal(t, "crlf line", ExtractTitle("crlf line\r\nnext"))
}

func TestExtractLink(t *testing.T) {
	t.Parallel()

	msg := RawMessage{
		ID:        "1234567890",
		ChannelID: "42",
		Content:   "Neat site\nhttps://example.com/tool",
	}
	link := ExtractLink(msg)
	require.Equal(t, "1234567890", link.ID)
	require.Equal(t, "https://example.com/tool", link.URL)
	require.Equal(t, "Neat site", link.Title)
	require.True(t, link.Visible)
}

func TestExtractLinks_SkipsMessagesWithoutURL(t *testing.T) {
	t.Parallel()

	msgs := []RawMessage{
		{ID: "3", Content: "https://a.example.com"},
		{ID: "2", Content: "no link here"},
		{ID: "1", Content: "title\nhttp://b.example.com"},
	}
	links := ExtractLinks(msgs)
	require.Len(t, links, 2)
	require.Equal(t, "3", links[0].ID)
	require.Equal(t, "1", links[1].ID)
}
