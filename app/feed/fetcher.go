package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lysyi3m/rss-desk/app/charset"
	"github.com/lysyi3m/rss-desk/app/database"
)

const (
	DefaultFetchTimeout = 10 * time.Second
	DefaultFetchRetries = 2
	DefaultMaxBodyBytes = 10 << 20

	ReachabilityTimeout = 7 * time.Second
	previewTimeout      = 8 * time.Second
	previewSampleSize   = 3
)

var ErrBodyTooLarge = errors.New("response body too large")

// ArticleStore persists normalized articles. Inserting an existing
// (feedID, GUIDOrHash) pair must report false without an error.
type ArticleStore interface {
	InsertArticleIfAbsent(ctx context.Context, feedID int64, article database.NewArticle) (bool, error)
}

type FetcherConfig struct {
	Timeout         time.Duration
	Retries         int
	TeaserMaxLength int
	UserAgent       string
	MaxBodyBytes    int64
}

type Fetcher struct {
	httpClient *http.Client
	parser     *Parser
	store      ArticleStore
	config     FetcherConfig
}

func NewFetcher(httpClient *http.Client, parser *Parser, store ArticleStore, config FetcherConfig) *Fetcher {
	if config.Timeout <= 0 {
		config.Timeout = DefaultFetchTimeout
	}
	if config.Retries < 0 {
		config.Retries = 0
	}
	if config.TeaserMaxLength <= 0 {
		config.TeaserMaxLength = DefaultTeaserMaxLength
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = DefaultMaxBodyBytes
	}

	return &Fetcher{
		httpClient: httpClient,
		parser:     parser,
		store:      store,
		config:     config,
	}
}

// IngestFeed downloads, parses and stores one feed and returns the number of
// newly inserted articles. Per-item storage failures are logged and skipped.
func (f *Fetcher) IngestFeed(ctx context.Context, feed database.Feed) (int, error) {
	text, err := f.fetchWithRetry(ctx, feed.FeedURL)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch feed: %w", err)
	}

	doc, err := f.parser.Parse(text)
	if err != nil {
		return 0, err
	}

	newCount := 0
	skipped := 0
	for _, item := range doc.Items {
		article, ok := Normalize(item, f.config.TeaserMaxLength)
		if !ok {
			skipped++
			continue
		}

		inserted, err := f.store.InsertArticleIfAbsent(ctx, feed.ID, article)
		if err != nil {
			slog.Warn("Article insert failed", "feed", feed.ID, "guid", article.GUIDOrHash, "error", err)
			continue
		}
		if inserted {
			newCount++
		}
	}

	if skipped > 0 {
		slog.Debug("Items without identity skipped", "feed", feed.ID, "skipped", skipped)
	}

	return newCount, nil
}

// Preview fetches and parses url once without storing anything.
func (f *Fetcher) Preview(ctx context.Context, url string) (*Preview, error) {
	if !IsValidURL(url) {
		return nil, ErrInvalidURL
	}

	text, err := f.fetchOnce(ctx, url, previewTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	doc, err := f.parser.Parse(text)
	if err != nil {
		return nil, err
	}

	preview := &Preview{
		ItemCount:    len(doc.Items),
		SampleTitles: []string{},
	}
	if doc.Title != "" {
		preview.Title = &doc.Title
	}

	for _, item := range doc.Items {
		if len(preview.SampleTitles) == previewSampleSize {
			break
		}
		if item.Title != "" {
			preview.SampleTitles = append(preview.SampleTitles, item.Title)
		}
	}

	return preview, nil
}

// Reachable reports whether url answers a GET with a 2xx status.
func (f *Fetcher) Reachable(ctx context.Context, url string) bool {
	timeoutCtx, cancel := context.WithTimeout(ctx, ReachabilityTimeout)
	defer cancel()

	resp, err := f.get(timeoutCtx, url)
	if err != nil {
		slog.Debug("URL not reachable", "url", url, "error", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	return isSuccess(resp.StatusCode)
}

func (f *Fetcher) fetchWithRetry(ctx context.Context, url string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= f.config.Retries; attempt++ {
		if attempt > 0 && ctx.Err() != nil {
			break
		}

		text, err := f.fetchOnce(ctx, url, f.config.Timeout)
		if err == nil {
			return text, nil
		}

		lastErr = err
		slog.Debug("Fetch attempt failed", "url", url, "attempt", attempt+1, "error", err)
	}

	return "", lastErr
}

// fetchOnce performs one GET with its own timeout window and returns the body
// decoded to UTF-8.
func (f *Fetcher) fetchOnce(ctx context.Context, url string, timeout time.Duration) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := f.get(timeoutCtx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return "", &StatusError{StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodyBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > f.config.MaxBodyBytes {
		return "", fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, f.config.MaxBodyBytes)
	}

	label := charset.DetectBytes(resp.Header.Get("Content-Type"), data)
	return charset.Decode(data, label), nil
}

func (f *Fetcher) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if f.config.UserAgent != "" {
		req.Header.Set("User-Agent", f.config.UserAgent)
	}

	return f.httpClient.Do(req)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
