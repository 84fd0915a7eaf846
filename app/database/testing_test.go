package database

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Expected no error opening database, got: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Expected no error running migrations, got: %v", err)
	}

	return db
}

func createTestFeed(t *testing.T, repo *FeedRepository, name string) *Feed {
	t.Helper()

	feed, err := repo.CreateFeed(context.Background(), FeedInput{
		Name:       name,
		WebsiteURL: "https://example.com",
		FeedURL:    "https://example.com/feed.xml",
	})
	if err != nil {
		t.Fatalf("Expected no error creating feed, got: %v", err)
	}
	return feed
}

func strPtr(s string) *string {
	return &s
}
