package garden

import (
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://\S+`)

// DefaultTitle is used when a message body is empty.
const DefaultTitle = "Untitled"

// ExtractURL returns the first URL found in body, or "" when body contains
// none. Callers normally pre-filter for the "http" substring, so the empty
// result is a degenerate case, not an error.
func ExtractURL(body string) string {
	return urlPattern.FindString(body)
}

// ExtractTitle returns the text before the first newline. An empty body
// yields DefaultTitle.
func ExtractTitle(body string) string {
	if body == "" {
		return DefaultTitle
	}
	if idx := strings.IndexByte(body, '\n'); idx >= 0 {
		return strings.TrimRight(body[:idx], "\r")
	}
	return body
}

// ExtractLink projects a RawMessage into an ExtractedLink.
func ExtractLink(msg RawMessage) ExtractedLink {
	return ExtractedLink{
		ID:      msg.ID,
		URL:     ExtractURL(msg.Content),
		Title:   ExtractTitle(msg.Content),
		Visible: true,
	}
}

// ExtractLinks projects a batch of messages, skipping those without a URL.
func ExtractLinks(msgs []RawMessage) []ExtractedLink {
	out := make([]ExtractedLink, 0, len(msgs))
	for _, m := range msgs {
		link := ExtractLink(m)
		if link.URL == "" {
			continue
		}
		out = append(out, link)
	}
	return out
}
