package feed

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"
)

// Text handed to the parser is already UTF-8, so a leftover prolog declaration
// would make the XML decoder convert it a second time. Only a prolog at the
// start of the document counts.
var prologEncoding = regexp.MustCompile(`(?i)\A(?:\x{FEFF})?\s*(<\?xml[^>]*encoding=["'])[^"']+(["'])`)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Parse(text string) (*Document, error) {
	if loc := prologEncoding.FindStringSubmatchIndex(text); loc != nil {
		text = text[:loc[3]] + "utf-8" + text[loc[4]:]
	}

	feed, err := p.gofeedParser.ParseString(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	doc := &Document{
		Title: strings.TrimSpace(feed.Title),
		Items: make([]Item, 0, len(feed.Items)),
	}

	atom := feed.FeedType == "atom"
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		doc.Items = append(doc.Items, p.convertItem(item, atom))
	}

	return doc, nil
}

func (p *Parser) convertItem(item *gofeed.Item, atom bool) Item {
	converted := Item{
		Title:       strings.TrimSpace(item.Title),
		Link:        strings.TrimSpace(item.Link),
		PubDate:     item.Published,
		Published:   item.Updated,
		Content:     item.Content,
		Description: item.Description,
	}

	if atom {
		converted.ID = strings.TrimSpace(item.GUID)
		converted.Summary = item.Description
	} else {
		converted.GUID = strings.TrimSpace(item.GUID)
	}

	switch {
	case item.PublishedParsed != nil:
		converted.ISODate = item.PublishedParsed
	case item.UpdatedParsed != nil:
		converted.ISODate = item.UpdatedParsed
	}

	if item.Content != "" {
		converted.ContentSnippet = stripTags(item.Content)
	}

	return converted
}
