package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/rss-desk/app/cfg"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/api/events"},
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-API-Key")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	api := r.Group("/api")
	if apiAccessKey != "" {
		api.Use(authMiddleware(apiAccessKey))
		slog.Info("API write endpoints require authentication")
	}
	{
		api.GET("/health", handler.GetHealth)
		api.GET("/events", handler.StreamEvents)

		api.GET("/fetch/status", handler.GetFetchStatus)
		api.POST("/fetch/run", handler.RunFetch)

		api.GET("/feeds", handler.ListFeeds)
		api.POST("/feeds", handler.CreateFeed)
		api.GET("/feeds/test/url", handler.TestFeedURL)
		api.POST("/feeds/logos/refresh", handler.RefreshLogos)
		api.PUT("/feeds/:id", handler.UpdateFeed)
		api.DELETE("/feeds/:id", handler.DeleteFeed)

		api.GET("/articles", handler.ListArticles)
		api.GET("/articles/:id/lists", handler.ListArticleLists)

		api.GET("/lists", handler.ListLists)
		api.POST("/lists", handler.CreateList)
		api.PUT("/lists/:id", handler.UpdateList)
		api.DELETE("/lists/:id", handler.DeleteList)
		api.POST("/lists/:id/items", handler.AddListItem)
		api.DELETE("/lists/:id/items/:articleId", handler.RemoveListItem)
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":     "RSS Desk",
			"version":     cfg.GetVersion(),
			"description": "RSS/Atom reader backend with scheduled ingestion and live updates",
			"endpoints": map[string]string{
				"health":   "/api/health",
				"events":   "/api/events",
				"status":   "/api/fetch/status",
				"run":      "/api/fetch/run (POST)",
				"feeds":    "/api/feeds",
				"articles": "/api/articles",
				"lists":    "/api/lists",
			},
			"api_status": map[string]any{
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// authMiddleware guards mutating requests. Reads stay open so the event
// stream and listings work from a plain browser.
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			slog.Warn("Rejected API request", "path", c.Request.URL.Path, "client", c.ClientIP())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
