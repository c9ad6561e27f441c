package api

import (
	"net/http"

	"leadtrail/internal/dto/req"
	"leadtrail/internal/repository"

	"github.com/gin-gonic/gin"
)

// HistoryHandler serves the read surface of one history table.
type HistoryHandler[T any] struct {
	reader repository.HistoryReader[T]
}

func NewHistoryHandler[T any](reader repository.HistoryReader[T]) *HistoryHandler[T] {
	return &HistoryHandler[T]{reader: reader}
}

func (h *HistoryHandler[T]) Mount(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.GET("/recent", h.Recent)
	g.GET("/entity/:type/:id", h.Entity)
	g.GET("/actor/:id", h.Actor)
	g.GET("/action/:action", h.Action)
}

// List accepts any combination of actor_id, entity_type, entity_id, action,
// from and to.
func (h *HistoryHandler[T]) List(c *gin.Context) {
	var q req.HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid params"})
		return
	}
	page, err := h.reader.ListFiltered(c.Request.Context(), repository.HistoryFilter{
		ActorID:    q.ActorID,
		EntityType: q.Type,
		EntityID:   q.EntityID,
		Action:     q.Action,
		From:       q.From,
		To:         q.To,
	}, q.Page, q.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *HistoryHandler[T]) Recent(c *gin.Context) {
	var q req.RecentQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid params"})
		return
	}
	items, err := h.reader.ListRecent(c.Request.Context(), q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *HistoryHandler[T]) Entity(c *gin.Context) {
	h.forEntity(c, c.Param("type"))
}

// ForEntity serves /<resource>/:id/history for a fixed entity type.
func (h *HistoryHandler[T]) ForEntity(entityType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.forEntity(c, entityType)
	}
}

func (h *HistoryHandler[T]) forEntity(c *gin.Context, entityType string) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var q req.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid params"})
		return
	}
	page, err := h.reader.ListForEntity(c.Request.Context(), entityType, id, q.Page, q.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *HistoryHandler[T]) Actor(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var q req.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid params"})
		return
	}
	page, err := h.reader.ListForActor(c.Request.Context(), id, q.Page, q.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *HistoryHandler[T]) Action(c *gin.Context) {
	var q req.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid params"})
		return
	}
	page, err := h.reader.ListByAction(c.Request.Context(), c.Param("action"), q.Page, q.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
