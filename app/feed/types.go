package feed

import (
	"time"
)

// Document is a parsed syndication feed
type Document struct {
	Title string
	Items []Item
}

// Item carries the raw per-entry fields a feed may provide. RSS entries fill
// GUID, Atom entries fill ID.
type Item struct {
	Title          string
	Link           string
	GUID           string
	ID             string
	ISODate        *time.Time
	PubDate        string
	Published      string
	ContentSnippet string
	Summary        string
	Content        string
	Description    string
}

// Logo is a validated site icon ready to be stored against a feed
type Logo struct {
	Data []byte
	MIME string
}

// Preview summarizes a remote feed without storing anything
type Preview struct {
	Title        *string  `json:"title"`
	ItemCount    int      `json:"itemCount"`
	SampleTitles []string `json:"sampleTitles"`
}

// Seed file types

type Seed struct {
	Sources []SeedSource `yaml:"sources"`
}

type SeedSource struct {
	Name  string   `yaml:"name"`
	URL   string   `yaml:"url"`
	Feeds []string `yaml:"feeds"`
}
