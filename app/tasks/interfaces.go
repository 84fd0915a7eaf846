package tasks

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/lysyi3m/rss-desk/app/database"
	"github.com/lysyi3m/rss-desk/app/feed"
)

type FeedStore interface {
	ListFeeds(ctx context.Context) ([]database.Feed, error)
	UpdateFeedLogo(ctx context.Context, id int64, data []byte, mime string) error
}

type FeedIngester interface {
	IngestFeed(ctx context.Context, feed database.Feed) (int, error)
}

type LogoResolver interface {
	Resolve(ctx context.Context, websiteURL string) *feed.Logo
}

type Publisher interface {
	Publish(event string, data any)
}
