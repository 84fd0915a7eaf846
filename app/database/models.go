package database

import (
	"time"
)

// Feed represents a registered syndication source
type Feed struct {
	ID         int64     `db:"id"`
	Name       string    `db:"name"`
	WebsiteURL string    `db:"website_url"`
	FeedURL    string    `db:"feed_url"`
	Logo       []byte    `db:"logo"`
	LogoMIME   string    `db:"logo_mime"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (f *Feed) HasLogo() bool {
	return len(f.Logo) > 0 && f.LogoMIME != ""
}

// Article is a single ingested item joined with its source feed
type Article struct {
	ID             int64      `db:"id"`
	FeedID         int64      `db:"feed_id"`
	Title          string     `db:"title"`
	Teaser         *string    `db:"teaser"`
	URL            *string    `db:"url"`
	PublishedAt    *time.Time `db:"published_at"`
	GUIDOrHash     string     `db:"guid_or_hash"`
	CreatedAt      time.Time  `db:"created_at"`
	SourceName     string     `db:"source_name"`
	SourceLogo     []byte     `db:"source_logo"`
	SourceLogoMIME string     `db:"source_logo_mime"`
}

type List struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	Color       string    `db:"color"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ListRef is the short list form returned for an article's memberships
type ListRef struct {
	ID    int64  `db:"id"`
	Name  string `db:"name"`
	Color string `db:"color"`
}
