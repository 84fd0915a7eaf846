package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/rss-desk/app/events"
)

// LogoRefresher re-resolves the site icon of every feed.
type LogoRefresher struct {
	feedStore FeedStore
	resolver  LogoResolver
	publisher Publisher
}

func NewLogoRefresher(feedStore FeedStore, resolver LogoResolver, publisher Publisher) *LogoRefresher {
	return &LogoRefresher{
		feedStore: feedStore,
		resolver:  resolver,
		publisher: publisher,
	}
}

// RefreshLogos visits feeds sequentially and stores each icon found. Feeds
// without a resolvable icon keep their current logo.
func (r *LogoRefresher) RefreshLogos(ctx context.Context) (int, error) {
	task := NewTask(TaskTypeRefreshLogos)
	task.Start()

	feeds, err := r.feedStore.ListFeeds(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list feeds: %w", err)
	}

	updated := 0
	for _, f := range feeds {
		if ctx.Err() != nil {
			return updated, ctx.Err()
		}

		logo := r.resolver.Resolve(ctx, f.WebsiteURL)
		if logo == nil {
			slog.Warn("Logo not found", "feed", f.ID, "url", f.WebsiteURL)
			continue
		}

		if err := r.feedStore.UpdateFeedLogo(ctx, f.ID, logo.Data, logo.MIME); err != nil {
			slog.Error("Logo update failed", "feed", f.ID, "error", err)
			continue
		}

		updated++
		slog.Debug("Logo updated", "feed", f.ID, "mime", logo.MIME)
	}

	slog.Info("Task completed",
		"type", "RefreshLogos",
		"id", task.ID,
		"duration", task.GetDuration(),
		"total", len(feeds),
		"updated", updated)

	if updated > 0 {
		r.publisher.Publish(events.LogosRefreshed, map[string]any{"updated": updated, "total": len(feeds)})
	}

	return updated, nil
}
