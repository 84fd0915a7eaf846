package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const feedColumns = `id, name, website_url, feed_url, logo, COALESCE(logo_mime, '') AS logo_mime, created_at, updated_at`

// FeedRepository handles database operations for feeds
type FeedRepository struct {
	db *DB
}

// NewFeedRepository creates a new feed repository
func NewFeedRepository(db *DB) *FeedRepository {
	return &FeedRepository{db: db}
}

// ListFeeds returns all feeds in registration order
func (r *FeedRepository) ListFeeds(ctx context.Context) ([]Feed, error) {
	feeds := []Feed{}
	err := r.db.SelectContext(ctx, &feeds, `SELECT `+feedColumns+` FROM feeds ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}
	return feeds, nil
}

func (r *FeedRepository) GetFeed(ctx context.Context, id int64) (*Feed, error) {
	var feed Feed
	err := r.db.GetContext(ctx, &feed, `SELECT `+feedColumns+` FROM feeds WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}
	return &feed, nil
}

func (r *FeedRepository) CountFeeds(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM feeds`); err != nil {
		return 0, fmt.Errorf("failed to count feeds: %w", err)
	}
	return count, nil
}

func (r *FeedRepository) CreateFeed(ctx context.Context, in FeedInput) (*Feed, error) {
	now := time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO feeds (name, website_url, feed_url, logo, logo_mime, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, in.Name, in.WebsiteURL, in.FeedURL, nullableBytes(in.Logo), nullableString(in.LogoMIME), now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert feed: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get feed id: %w", err)
	}

	return r.GetFeed(ctx, id)
}

// UpdateFeed replaces every mutable column, including the logo
func (r *FeedRepository) UpdateFeed(ctx context.Context, id int64, in FeedInput) (*Feed, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE feeds
		SET name = ?, website_url = ?, feed_url = ?, logo = ?, logo_mime = ?, updated_at = ?
		WHERE id = ?
	`, in.Name, in.WebsiteURL, in.FeedURL, nullableBytes(in.Logo), nullableString(in.LogoMIME), time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update feed: %w", err)
	}

	if err := requireAffected(res); err != nil {
		return nil, err
	}

	return r.GetFeed(ctx, id)
}

func (r *FeedRepository) UpdateFeedLogo(ctx context.Context, id int64, data []byte, mime string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE feeds
		SET logo = ?, logo_mime = ?, updated_at = ?
		WHERE id = ?
	`, data, mime, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update feed logo: %w", err)
	}

	return requireAffected(res)
}

// DeleteFeed removes the feed; articles and their list memberships cascade
func (r *FeedRepository) DeleteFeed(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM feeds WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete feed: %w", err)
	}

	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableBytes(value []byte) any {
	if len(value) == 0 {
		return nil
	}
	return value
}
