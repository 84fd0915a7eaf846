package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/rss-desk/app/database"
	"github.com/lysyi3m/rss-desk/app/events"
	"github.com/lysyi3m/rss-desk/app/feed"
	"github.com/lysyi3m/rss-desk/app/tasks"
)

type stubRunner struct {
	mu      sync.Mutex
	calls   int
	release chan struct{}
	err     error
	status  tasks.Status
}

func (r *stubRunner) RunOnce(ctx context.Context) (tasks.Status, error) {
	r.mu.Lock()
	r.calls++
	release := r.release
	r.mu.Unlock()

	if release != nil {
		<-release
	}
	return r.status, r.err
}

func (r *stubRunner) Status() tasks.Status {
	return r.status
}

func (r *stubRunner) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type stubProber struct {
	reachable bool
	preview   *feed.Preview
	err       error
}

func (p *stubProber) Reachable(ctx context.Context, url string) bool {
	return p.reachable
}

func (p *stubProber) Preview(ctx context.Context, url string) (*feed.Preview, error) {
	if !feed.IsValidURL(url) {
		return nil, feed.ErrInvalidURL
	}
	return p.preview, p.err
}

type stubLogos struct {
	mu    sync.Mutex
	logo  *feed.Logo
	calls []string
}

func (l *stubLogos) Resolve(ctx context.Context, websiteURL string) *feed.Logo {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, websiteURL)
	return l.logo
}

type stubRefresher struct {
	updated int
	err     error
}

func (r *stubRefresher) RefreshLogos(ctx context.Context) (int, error) {
	return r.updated, r.err
}

type testEnv struct {
	db        *database.DB
	feeds     *database.FeedRepository
	articles  *database.ArticleRepository
	lists     *database.ListRepository
	runner    *stubRunner
	guard     *tasks.Guard
	prober    *stubProber
	logos     *stubLogos
	refresher *stubRefresher
	bus       *events.Bus
	handler   *Handler
	router    *gin.Engine

	mu        sync.Mutex
	published []events.Message
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("Expected no error opening database, got: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatalf("Expected no error running migrations, got: %v", err)
	}

	env := &testEnv{
		db:        db,
		feeds:     database.NewFeedRepository(db),
		articles:  database.NewArticleRepository(db),
		lists:     database.NewListRepository(db),
		runner:    &stubRunner{},
		guard:     &tasks.Guard{},
		prober:    &stubProber{reachable: true},
		logos:     &stubLogos{},
		refresher: &stubRefresher{},
		bus:       events.NewBus(),
	}
	env.bus.Subscribe(func(msg events.Message) {
		env.mu.Lock()
		defer env.mu.Unlock()
		env.published = append(env.published, msg)
	})

	env.handler = NewHandler(env.feeds, env.articles, env.lists, env.runner, env.guard,
		env.prober, env.logos, env.refresher, env.bus, 20*time.Millisecond)
	env.router = NewServer(env.handler, "")

	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Expected no error encoding body, got: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) eventNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	names := make([]string, 0, len(e.published))
	for _, msg := range e.published {
		names = append(names, msg.Event)
	}
	return names
}

func (e *testEnv) createFeed(t *testing.T, name string) *database.Feed {
	t.Helper()

	f, err := e.feeds.CreateFeed(context.Background(), database.FeedInput{
		Name:       name,
		WebsiteURL: "https://" + name + ".example.com",
		FeedURL:    "https://" + name + ".example.com/rss",
	})
	if err != nil {
		t.Fatalf("Expected no error creating feed, got: %v", err)
	}
	return f
}

func (e *testEnv) createArticle(t *testing.T, feedID int64, key, title string) {
	t.Helper()

	if _, err := e.articles.InsertArticleIfAbsent(context.Background(), feedID, database.NewArticle{
		Title:      title,
		GUIDOrHash: key,
	}); err != nil {
		t.Fatalf("Expected no error inserting article, got: %v", err)
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("Expected JSON body, got %q: %v", rec.Body.String(), err)
	}
	return out
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, rec)["error"].(string)
}

var errBoom = errors.New("boom")
