package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/lysyi3m/rss-desk/app/database"
	"github.com/lysyi3m/rss-desk/app/events"
	"github.com/lysyi3m/rss-desk/app/feed"
)

func (h *Handler) ListFeeds(c *gin.Context) {
	feeds, err := h.feedRepo.ListFeeds(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "Feed not found", "list_feeds")
		return
	}

	c.JSON(http.StatusOK, lo.Reverse(lo.Map(feeds, func(f database.Feed, _ int) FeedResponse {
		return newFeedResponse(f)
	})))
}

func (h *Handler) CreateFeed(c *gin.Context) {
	req, ok := h.bindFeedRequest(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	in := database.FeedInput{
		Name:       req.Name,
		WebsiteURL: req.WebsiteURL,
		FeedURL:    req.FeedURL,
	}
	if logo := h.logos.Resolve(ctx, req.WebsiteURL); logo != nil {
		in.Logo = logo.Data
		in.LogoMIME = logo.MIME
	}

	created, err := h.feedRepo.CreateFeed(ctx, in)
	if err != nil {
		respondStoreError(c, err, "Feed not found", "create_feed")
		return
	}

	slog.Info("Feed registered", "feed", created.ID, "url", created.FeedURL)
	h.bus.Publish(events.FeedsUpdated, gin.H{"id": created.ID})
	c.JSON(http.StatusCreated, newFeedResponse(*created))
}

// UpdateFeed re-resolves the logo when the website changed or none is stored.
func (h *Handler) UpdateFeed(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	req, ok := h.bindFeedRequest(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	existing, err := h.feedRepo.GetFeed(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Feed not found", "get_feed")
		return
	}

	in := database.FeedInput{
		Name:       req.Name,
		WebsiteURL: req.WebsiteURL,
		FeedURL:    req.FeedURL,
		Logo:       existing.Logo,
		LogoMIME:   existing.LogoMIME,
	}
	if !existing.HasLogo() || existing.WebsiteURL != req.WebsiteURL {
		if logo := h.logos.Resolve(ctx, req.WebsiteURL); logo != nil {
			in.Logo = logo.Data
			in.LogoMIME = logo.MIME
		}
	}

	updated, err := h.feedRepo.UpdateFeed(ctx, id, in)
	if err != nil {
		respondStoreError(c, err, "Feed not found", "update_feed")
		return
	}

	h.bus.Publish(events.FeedsUpdated, gin.H{"id": updated.ID})
	c.JSON(http.StatusOK, newFeedResponse(*updated))
}

func (h *Handler) DeleteFeed(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.feedRepo.DeleteFeed(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, "Feed not found", "delete_feed")
		return
	}

	slog.Info("Feed deleted", "feed", id)
	h.bus.Publish(events.FeedsUpdated, gin.H{"id": id})
	c.Status(http.StatusNoContent)
}

func (h *Handler) TestFeedURL(c *gin.Context) {
	preview, err := h.prober.Preview(c.Request.Context(), c.Query("url"))
	if errors.Is(err, feed.ErrInvalidURL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL format"})
		return
	}
	if err != nil {
		slog.Debug("Feed test failed", "url", c.Query("url"), "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Feed not reachable or invalid RSS"})
		return
	}

	c.JSON(http.StatusOK, preview)
}

// bindFeedRequest validates the payload shared by create and update and
// checks that the feed URL answers.
func (h *Handler) bindFeedRequest(c *gin.Context) (feedRequest, bool) {
	var req feedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return req, false
	}

	req.Name = strings.TrimSpace(req.Name)
	req.WebsiteURL = strings.TrimSpace(req.WebsiteURL)
	req.FeedURL = strings.TrimSpace(req.FeedURL)

	if req.Name == "" || req.WebsiteURL == "" || req.FeedURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, websiteUrl, and feedUrl are required"})
		return req, false
	}
	if !feed.IsValidURL(req.WebsiteURL) || !feed.IsValidURL(req.FeedURL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL format"})
		return req, false
	}
	if !h.prober.Reachable(c.Request.Context(), req.FeedURL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Feed URL not reachable"})
		return req, false
	}

	return req, true
}
