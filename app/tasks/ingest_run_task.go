package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/rss-desk/app/events"
)

// Runner performs ingestion runs over every registered feed.
type Runner struct {
	feedStore FeedStore
	ingester  FeedIngester
	publisher Publisher
	status    *StatusCell
}

func NewRunner(feedStore FeedStore, ingester FeedIngester, publisher Publisher, status *StatusCell) *Runner {
	return &Runner{
		feedStore: feedStore,
		ingester:  ingester,
		publisher: publisher,
		status:    status,
	}
}

func (r *Runner) Status() Status {
	return r.status.Load()
}

// RunOnce ingests all feeds one after another. A failing feed is logged and
// skipped; only failing to list feeds makes the run itself fail. The status
// cell is replaced and fetch.completed published on every outcome.
func (r *Runner) RunOnce(ctx context.Context) (Status, error) {
	task := NewTask(TaskTypeIngestRun)
	task.Start()

	slog.Info("Fetch run started", "id", task.ID)

	totalNew, processed, failed, runErr := r.ingestAll(ctx)

	at := time.Now().UTC()
	durationMs := task.GetDuration().Milliseconds()
	status := Status{
		At:         &at,
		DurationMs: &durationMs,
		TotalNew:   totalNew,
	}
	if runErr != nil {
		msg := runErr.Error()
		status.Error = &msg
	}

	r.status.Store(status)

	if runErr != nil {
		slog.Error("Task failed", "type", "IngestRun", "id", task.ID, "error", runErr)
	}

	slog.Info("Task completed",
		"type", "IngestRun",
		"id", task.ID,
		"duration", task.GetDuration(),
		"feeds", processed,
		"failed", failed,
		"new", totalNew)

	r.publisher.Publish(events.FetchCompleted, status)

	return status, runErr
}

func (r *Runner) ingestAll(ctx context.Context) (totalNew, processed, failed int, err error) {
	feeds, err := r.feedStore.ListFeeds(ctx)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to list feeds: %w", err)
	}

	for _, f := range feeds {
		if ctx.Err() != nil {
			return totalNew, processed, failed, fmt.Errorf("run interrupted: %w", ctx.Err())
		}

		start := time.Now()
		newCount, err := r.ingester.IngestFeed(ctx, f)
		processed++
		if err != nil {
			failed++
			slog.Error("Feed failed", "feed", f.ID, "url", f.FeedURL, "duration", time.Since(start), "error", err)
			continue
		}

		totalNew += newCount
		slog.Info("Feed updated", "feed", f.ID, "new", newCount, "duration", time.Since(start))
	}

	return totalNew, processed, failed, nil
}
