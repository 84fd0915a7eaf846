package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/lysyi3m/rss-desk/app/database"
	"github.com/lysyi3m/rss-desk/app/events"
)

func (h *Handler) ListLists(c *gin.Context) {
	lists, err := h.listRepo.ListLists(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "List not found", "list_lists")
		return
	}

	c.JSON(http.StatusOK, lo.Map(lists, func(l database.List, _ int) ListResponse {
		return newListResponse(l)
	}))
}

func (h *Handler) CreateList(c *gin.Context) {
	in, ok := bindListRequest(c)
	if !ok {
		return
	}

	list, err := h.listRepo.CreateList(c.Request.Context(), in)
	if err != nil {
		respondStoreError(c, err, "List not found", "create_list")
		return
	}

	h.bus.Publish(events.ListsUpdated, gin.H{"id": list.ID})
	c.JSON(http.StatusCreated, newListResponse(*list))
}

func (h *Handler) UpdateList(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	in, ok := bindListRequest(c)
	if !ok {
		return
	}

	list, err := h.listRepo.UpdateList(c.Request.Context(), id, in)
	if err != nil {
		respondStoreError(c, err, "List not found", "update_list")
		return
	}

	h.bus.Publish(events.ListsUpdated, gin.H{"id": list.ID})
	c.JSON(http.StatusOK, newListResponse(*list))
}

func (h *Handler) DeleteList(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.listRepo.DeleteList(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, "List not found", "delete_list")
		return
	}

	h.bus.Publish(events.ListsUpdated, gin.H{"id": id})
	c.Status(http.StatusNoContent)
}

func (h *Handler) AddListItem(c *gin.Context) {
	listID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req listItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ArticleID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "articleId is required"})
		return
	}

	if err := h.listRepo.AddListItem(c.Request.Context(), listID, req.ArticleID); err != nil {
		respondStoreError(c, err, "List or article not found", "add_list_item")
		return
	}

	h.bus.Publish(events.ListItemsUpdated, gin.H{"listId": listID, "articleId": req.ArticleID})
	c.JSON(http.StatusCreated, gin.H{"ok": true})
}

func (h *Handler) RemoveListItem(c *gin.Context) {
	listID, ok := parseID(c, "id")
	if !ok {
		return
	}
	articleID, ok := parseID(c, "articleId")
	if !ok {
		return
	}

	if err := h.listRepo.RemoveListItem(c.Request.Context(), listID, articleID); err != nil {
		respondStoreError(c, err, "Item not found", "remove_list_item")
		return
	}

	h.bus.Publish(events.ListItemsUpdated, gin.H{"listId": listID, "articleId": articleID})
	c.Status(http.StatusNoContent)
}

func bindListRequest(c *gin.Context) (database.ListInput, bool) {
	var req listRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return database.ListInput{}, false
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return database.ListInput{}, false
	}

	in := database.ListInput{
		Name:  name,
		Color: strings.TrimSpace(req.Color),
	}
	if req.Description != nil {
		if desc := strings.TrimSpace(*req.Description); desc != "" {
			in.Description = &desc
		}
	}

	return in, true
}
