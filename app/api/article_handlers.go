package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/lysyi3m/rss-desk/app/database"
)

func (h *Handler) ListArticles(c *gin.Context) {
	feedID, ok := parseOptionalID(c, "feedId")
	if !ok {
		return
	}
	listID, ok := parseOptionalID(c, "listId")
	if !ok {
		return
	}

	limit := database.DefaultArticleLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	articles, err := h.articleRepo.ListArticles(c.Request.Context(), database.ArticleFilter{
		FeedID: feedID,
		Source: strings.TrimSpace(c.Query("source")),
		ListID: listID,
		Query:  c.Query("query"),
		Limit:  limit,
	})
	if err != nil {
		respondStoreError(c, err, "Article not found", "list_articles")
		return
	}

	c.JSON(http.StatusOK, lo.Map(articles, func(a database.Article, _ int) ArticleResponse {
		return newArticleResponse(a)
	}))
}

func (h *Handler) ListArticleLists(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	refs, err := h.articleRepo.ListsForArticle(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "Article not found", "list_article_lists")
		return
	}

	c.JSON(http.StatusOK, lo.Map(refs, func(r database.ListRef, _ int) ListRefResponse {
		return ListRefResponse{ID: r.ID, Name: r.Name, Color: r.Color}
	}))
}
