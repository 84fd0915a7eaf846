package database

import (
	"time"
)

const (
	DefaultListColor    = "#1d1d1f"
	DefaultArticleLimit = 100
)

// NewArticle holds the normalized fields persisted for a freshly ingested item
type NewArticle struct {
	Title       string
	Teaser      *string
	URL         *string
	PublishedAt *time.Time
	GUIDOrHash  string
}

type FeedInput struct {
	Name       string
	WebsiteURL string
	FeedURL    string
	Logo       []byte
	LogoMIME   string
}

type ListInput struct {
	Name        string
	Description *string
	Color       string
}

// ArticleFilter narrows an article query. FeedID takes precedence over Source.
type ArticleFilter struct {
	FeedID *int64
	Source string
	ListID *int64
	Query  string
	Limit  int
}
