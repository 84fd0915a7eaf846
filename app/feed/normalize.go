package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/net/html"

	"github.com/lysyi3m/rss-desk/app/database"
)

const DefaultTeaserMaxLength = 220

const ellipsis = "…"

// ItemURL is the canonical article URL: the link, else the entry identifier.
func ItemURL(item Item) string {
	if item.Link != "" {
		return item.Link
	}
	return item.ID
}

// DedupKey returns the GUID, else the entry identifier, else the hex SHA-256
// of url. An empty result means the item cannot be deduplicated.
func DedupKey(item Item, url string) string {
	if item.GUID != "" {
		return item.GUID
	}
	if item.ID != "" {
		return item.ID
	}
	if url == "" {
		return ""
	}
	return HashURL(url)
}

func HashURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

// PublishedAt tries ISODate, PubDate and Published in that order. Only the
// first present field is considered; if it does not parse the result is nil.
func PublishedAt(item Item) *time.Time {
	if item.ISODate != nil {
		t := item.ISODate.UTC()
		return &t
	}

	raw := item.PubDate
	if strings.TrimSpace(raw) == "" {
		raw = item.Published
	}
	return parseDate(raw)
}

func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return nil
	}

	t = t.UTC()
	return &t
}

// Teaser strips markup from the best available text field, collapses
// whitespace and caps the result at maxLen runes. Empty input yields nil.
func Teaser(item Item, maxLen int) *string {
	for _, source := range []string{item.ContentSnippet, item.Summary, item.Content, item.Description} {
		if source != "" {
			return NormalizeTeaser(source, maxLen)
		}
	}
	return nil
}

func NormalizeTeaser(text string, maxLen int) *string {
	if maxLen <= 0 {
		maxLen = DefaultTeaserMaxLength
	}

	cleaned := strings.Join(strings.Fields(stripTags(text)), " ")
	if cleaned == "" {
		return nil
	}

	runes := []rune(cleaned)
	if len(runes) > maxLen {
		cleaned = string(runes[:maxLen-1]) + ellipsis
	}

	return &cleaned
}

// stripTags returns the text content of an HTML fragment. Tags become spaces
// and script or style bodies are dropped.
func stripTags(fragment string) string {
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	skip := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
			}
		case html.StartTagToken:
			if isRawTextTag(z) {
				skip++
			}
			sb.WriteByte(' ')
		case html.EndTagToken:
			if isRawTextTag(z) && skip > 0 {
				skip--
			}
			sb.WriteByte(' ')
		case html.SelfClosingTagToken:
			sb.WriteByte(' ')
		}
	}
}

func isRawTextTag(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}

// Normalize turns a parsed item into the persisted article fields. It reports
// false when the item has no usable deduplication key.
func Normalize(item Item, teaserMaxLen int) (database.NewArticle, bool) {
	url := ItemURL(item)
	key := DedupKey(item, url)
	if key == "" {
		return database.NewArticle{}, false
	}

	article := database.NewArticle{
		Title:       item.Title,
		Teaser:      Teaser(item, teaserMaxLen),
		PublishedAt: PublishedAt(item),
		GUIDOrHash:  key,
	}
	if url != "" {
		article.URL = &url
	}

	return article, true
}
