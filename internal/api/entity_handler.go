package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"leadtrail/internal/dto/req"
	"leadtrail/internal/model"
	"leadtrail/internal/repository"
	"leadtrail/internal/service"

	"github.com/gin-gonic/gin"
)

// EntityProvider is the audited CRUD surface one resource exposes.
type EntityProvider[T any, P model.Entity[T]] interface {
	Get(ctx context.Context, id uint64) (P, error)
	List(ctx context.Context, q repository.ListQuery) (*repository.Page[T], error)
	CreateFromFields(ctx context.Context, actorID *uint64, fields map[string]any) (P, error)
	Update(ctx context.Context, actorID *uint64, id uint64, fields map[string]any) (P, error)
	Delete(ctx context.Context, actorID *uint64, id uint64) error
	Restore(ctx context.Context, actorID *uint64, id uint64) (P, error)
	ForceDelete(ctx context.Context, actorID *uint64, id uint64) error
}

type EntityHandler[T any, P model.Entity[T]] struct {
	service EntityProvider[T, P]
}

func NewEntityHandler[T any, P model.Entity[T]](svc EntityProvider[T, P]) *EntityHandler[T, P] {
	return &EntityHandler[T, P]{service: svc}
}

// Mount registers the CRUD routes; writes go through the given middleware.
func (h *EntityHandler[T, P]) Mount(g *gin.RouterGroup, write ...gin.HandlerFunc) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", chain(write, h.Create)...)
	g.PUT("/:id", chain(write, h.Update)...)
	g.DELETE("/:id", chain(write, h.Delete)...)
	g.POST("/:id/restore", chain(write, h.Restore)...)
	g.DELETE("/:id/force", chain(write, h.ForceDelete)...)
}

func (h *EntityHandler[T, P]) List(c *gin.Context) {
	var q req.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid params"})
		return
	}
	page, err := h.service.List(c.Request.Context(), repository.ListQuery{
		Search: q.Search, Status: q.Status, Page: q.Page, PageSize: q.PageSize,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *EntityHandler[T, P]) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	entity, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity)
}

// bindFields keeps JSON numbers as literals so large ids reach the service
// without a float64 round trip.
func bindFields(c *gin.Context) (map[string]any, error) {
	if c.Request.Body == nil {
		return nil, errors.New("empty body")
	}
	var fields map[string]any
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func (h *EntityHandler[T, P]) Create(c *gin.Context) {
	fields, err := bindFields(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "JSON format error"})
		return
	}
	ctx := c.Request.Context()
	entity, err := h.service.CreateFromFields(ctx, service.ActorID(ctx), fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entity)
}

func (h *EntityHandler[T, P]) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	fields, err := bindFields(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "JSON format error"})
		return
	}
	ctx := c.Request.Context()
	entity, err := h.service.Update(ctx, service.ActorID(ctx), id, fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity)
}

func (h *EntityHandler[T, P]) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.service.Delete(ctx, service.ActorID(ctx), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EntityHandler[T, P]) Restore(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	entity, err := h.service.Restore(ctx, service.ActorID(ctx), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity)
}

func (h *EntityHandler[T, P]) ForceDelete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.service.ForceDelete(ctx, service.ActorID(ctx), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func chain(mw []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(mw)+1)
	return append(append(out, mw...), h)
}
