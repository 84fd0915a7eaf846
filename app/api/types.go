package api

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/lysyi3m/rss-desk/app/database"
	"github.com/lysyi3m/rss-desk/app/events"
	"github.com/lysyi3m/rss-desk/app/feed"
	"github.com/lysyi3m/rss-desk/app/tasks"
)

type FetchRunner interface {
	RunOnce(ctx context.Context) (tasks.Status, error)
	Status() tasks.Status
}

type FeedProber interface {
	Reachable(ctx context.Context, url string) bool
	Preview(ctx context.Context, url string) (*feed.Preview, error)
}

type LogoResolver interface {
	Resolve(ctx context.Context, websiteURL string) *feed.Logo
}

type LogoRefresher interface {
	RefreshLogos(ctx context.Context) (int, error)
}

type EventBus interface {
	events.Publisher
	Subscribe(handler events.Handler) func()
}

var (
	_ FetchRunner   = (*tasks.Runner)(nil)
	_ FeedProber    = (*feed.Fetcher)(nil)
	_ LogoResolver  = (*feed.LogoResolver)(nil)
	_ LogoRefresher = (*tasks.LogoRefresher)(nil)
	_ EventBus      = (*events.Bus)(nil)
)

type Handler struct {
	feedRepo    database.FeedStore
	articleRepo database.ArticleStore
	listRepo    database.ListStore
	runner      FetchRunner
	guard       *tasks.Guard
	prober      FeedProber
	logos       LogoResolver
	refresher   LogoRefresher
	bus         EventBus
	keepAlive   time.Duration
}

// Request payloads

type feedRequest struct {
	Name       string `json:"name"`
	WebsiteURL string `json:"websiteUrl"`
	FeedURL    string `json:"feedUrl"`
}

type listRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Color       string  `json:"color"`
}

type listItemRequest struct {
	ArticleID int64 `json:"articleId"`
}

// Response payloads

type FeedResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	WebsiteURL  string    `json:"websiteUrl"`
	FeedURL     string    `json:"feedUrl"`
	LogoDataURL *string   `json:"logoDataUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ArticleResponse struct {
	ID                int64      `json:"id"`
	FeedID            int64      `json:"feedId"`
	Title             string     `json:"title"`
	Teaser            *string    `json:"teaser"`
	URL               *string    `json:"url"`
	PublishedAt       *time.Time `json:"publishedAt"`
	GUIDOrHash        string     `json:"guidOrHash"`
	CreatedAt         time.Time  `json:"createdAt"`
	SourceName        string     `json:"sourceName"`
	SourceLogoDataURL *string    `json:"sourceLogoDataUrl"`
}

type ListResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ListRefResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func newFeedResponse(f database.Feed) FeedResponse {
	return FeedResponse{
		ID:          f.ID,
		Name:        f.Name,
		WebsiteURL:  f.WebsiteURL,
		FeedURL:     f.FeedURL,
		LogoDataURL: logoDataURL(f.Logo, f.LogoMIME),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func newArticleResponse(a database.Article) ArticleResponse {
	return ArticleResponse{
		ID:                a.ID,
		FeedID:            a.FeedID,
		Title:             a.Title,
		Teaser:            a.Teaser,
		URL:               a.URL,
		PublishedAt:       a.PublishedAt,
		GUIDOrHash:        a.GUIDOrHash,
		CreatedAt:         a.CreatedAt,
		SourceName:        a.SourceName,
		SourceLogoDataURL: logoDataURL(a.SourceLogo, a.SourceLogoMIME),
	}
}

func newListResponse(l database.List) ListResponse {
	return ListResponse{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		Color:       l.Color,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func logoDataURL(data []byte, mime string) *string {
	if len(data) == 0 || mime == "" {
		return nil
	}
	url := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
	return &url
}
