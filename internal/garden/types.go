// Package garden holds the domain types and pure link-curation logic.
package garden

import "time"

// Channel is a chat channel eligible to feed the link garden.
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RawMessage is a chat message as returned by the platform, newest first.
// IDs are snowflake-style decimal strings and must never round-trip through
// a float.
type RawMessage struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	Content   string `json:"content"`
}

// ExtractedLink is the per-request projection of a RawMessage. It is never
// persisted.
type ExtractedLink struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Visible bool   `json:"visible"`
}

// CuratedLink is a row in the curated_links table.
type CuratedLink struct {
	ID                int64     `json:"id"`
	Title             string    `json:"title"`
	URL               string    `json:"url"`
	Description       *string   `json:"description,omitempty"`
	Category          string    `json:"category"`
	Notes             *string   `json:"notes,omitempty"`
	CreatorTwitter    *string   `json:"creator_twitter,omitempty"`
	ClickCount        int       `json:"click_count"`
	NewsletterStatus  *string   `json:"newsletter_status,omitempty"`
	ButtondownEmailID *string   `json:"buttondown_email_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CuratedLinkUpdate carries the mutable fields of a curated link. Nil means
// leave unchanged.
type CuratedLinkUpdate struct {
	Title            *string
	Description      *string
	Category         *string
	Notes            *string
	CreatorTwitter   *string
	NewsletterStatus *string
}

// EnrichedLink is an ExtractedLink joined against the curated set by
// normalized URL.
type EnrichedLink struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	URL            string `json:"url"`
	IsCurated      bool   `json:"is_curated"`
	Category       string `json:"category,omitempty"`
	Notes          string `json:"notes,omitempty"`
	CreatorTwitter string `json:"creator_twitter,omitempty"`
}

// TrackedBook is an entry from the reading tracker.
type TrackedBook struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Status string `json:"status"`
	Cover  string `json:"cover,omitempty"`
}

// CatalogBook is an entry from the highlights-source catalog.
type CatalogBook struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// MatchedBook is a TrackedBook with the highlights-source ID attached when a
// catalog match exists. A missing CatalogID is not an error.
type MatchedBook struct {
	TrackedBook
	CatalogID string `json:"catalog_id,omitempty"`
}
