package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/rss-desk/app/cfg"
	"github.com/lysyi3m/rss-desk/app/database"
	"github.com/lysyi3m/rss-desk/app/events"
	"github.com/lysyi3m/rss-desk/app/tasks"
)

const (
	DefaultKeepAlive = 25 * time.Second
	streamBuffer     = 32
)

func NewHandler(feedRepo database.FeedStore, articleRepo database.ArticleStore, listRepo database.ListStore,
	runner FetchRunner, guard *tasks.Guard, prober FeedProber, logos LogoResolver, refresher LogoRefresher,
	bus EventBus, keepAlive time.Duration) *Handler {
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}

	return &Handler{
		feedRepo:    feedRepo,
		articleRepo: articleRepo,
		listRepo:    listRepo,
		runner:      runner,
		guard:       guard,
		prober:      prober,
		logos:       logos,
		refresher:   refresher,
		bus:         bus,
		keepAlive:   keepAlive,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"ok":        true,
		"version":   cfg.GetVersion(),
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if feedCount, err := h.feedRepo.CountFeeds(c.Request.Context()); err == nil {
		health["feeds"] = feedCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetFetchStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.runner.Status())
}

// RunFetch performs an ingestion run synchronously. Only one manual run may
// be in flight; further requests get 409 until it finishes.
func (h *Handler) RunFetch(c *gin.Context) {
	ctx := context.WithoutCancel(c.Request.Context())

	err := h.guard.TryRun(ctx, func(ctx context.Context) error {
		_, err := h.runner.RunOnce(ctx)
		return err
	})
	if errors.Is(err, tasks.ErrAlreadyRunning) {
		c.JSON(http.StatusConflict, gin.H{"error": "Fetch already running"})
		return
	}
	if err != nil {
		slog.Error("Manual fetch failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// StreamEvents relays bus messages to the client as server-sent "update"
// events and sends a "ping" while idle. The subscription ends with the request.
func (h *Handler) StreamEvents(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	messages := make(chan events.Message, streamBuffer)
	unsubscribe := h.bus.Subscribe(func(msg events.Message) {
		select {
		case messages <- msg:
		default:
			slog.Warn("Event stream lagging, dropping event", "event", msg.Event)
		}
	})
	defer unsubscribe()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.SSEvent("update", events.Message{
		Event: "connected",
		Data:  gin.H{"at": time.Now().UTC().Format(time.RFC3339)},
	})
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-messages:
			c.SSEvent("update", msg)
			c.Writer.Flush()
		case <-ticker.C:
			c.SSEvent("ping", gin.H{})
			c.Writer.Flush()
		}
	}
}

func (h *Handler) RefreshLogos(c *gin.Context) {
	updated, err := h.refresher.RefreshLogos(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		slog.Error("Logo refresh failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Logo refresh failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "updated": updated})
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + param})
		return 0, false
	}
	return id, true
}

func parseOptionalID(c *gin.Context, query string) (*int64, bool) {
	raw := c.Query(query)
	if raw == "" {
		return nil, true
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + query})
		return nil, false
	}
	return &id, true
}

func respondStoreError(c *gin.Context, err error, notFound string, operation string) {
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
		return
	}

	slog.Error("Database error", "operation", operation, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
}
