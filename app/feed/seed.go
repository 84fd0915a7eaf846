package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/rss-desk/app/database"
)

type SeedStore interface {
	CountFeeds(ctx context.Context) (int, error)
	CreateFeed(ctx context.Context, in database.FeedInput) (*database.Feed, error)
}

// LoadSeed reads the YAML seed file and returns one feed input per feed URL.
// A missing file yields no feeds.
func LoadSeed(path string) ([]database.FeedInput, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	var inputs []database.FeedInput
	for i, source := range seed.Sources {
		if err := validateSource(source); err != nil {
			return nil, fmt.Errorf("invalid source at index %d: %w", i, err)
		}

		for _, feedURL := range source.Feeds {
			inputs = append(inputs, database.FeedInput{
				Name:       strings.TrimSpace(source.Name),
				WebsiteURL: strings.TrimSpace(source.URL),
				FeedURL:    strings.TrimSpace(feedURL),
			})
		}
	}

	return inputs, nil
}

// SeedFeeds inserts the seed file's feeds when no feeds are registered yet.
func SeedFeeds(ctx context.Context, store SeedStore, path string) (int, error) {
	count, err := store.CountFeeds(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	inputs, err := LoadSeed(path)
	if err != nil {
		return 0, fmt.Errorf("failed to load seed %s: %w", path, err)
	}

	for _, in := range inputs {
		if _, err := store.CreateFeed(ctx, in); err != nil {
			return 0, fmt.Errorf("failed to seed feed %s: %w", in.FeedURL, err)
		}
		slog.Debug("Feed seeded", "name", in.Name, "url", in.FeedURL)
	}

	return len(inputs), nil
}

func validateSource(source SeedSource) error {
	if strings.TrimSpace(source.Name) == "" {
		return errors.New("name is required")
	}
	if !IsValidURL(source.URL) {
		return fmt.Errorf("website URL %q: %w", source.URL, ErrInvalidURL)
	}
	for _, feedURL := range source.Feeds {
		if !IsValidURL(feedURL) {
			return fmt.Errorf("feed URL %q: %w", feedURL, ErrInvalidURL)
		}
	}
	return nil
}
