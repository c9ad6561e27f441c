package api

import (
	"net/http"

	"leadtrail/internal/dto/req"
	"leadtrail/internal/model"
	"leadtrail/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler swaps the generic create for one that takes a password.
type UserHandler struct {
	*EntityHandler[model.User, *model.User]
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{EntityHandler: NewEntityHandler[model.User, *model.User](svc), svc: svc}
}

func (h *UserHandler) Mount(g *gin.RouterGroup, write ...gin.HandlerFunc) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", chain(write, h.Register)...)
	g.PUT("/:id", chain(write, h.Update)...)
	g.DELETE("/:id", chain(write, h.Delete)...)
	g.POST("/:id/restore", chain(write, h.Restore)...)
	g.DELETE("/:id/force", chain(write, h.ForceDelete)...)
}

func (h *UserHandler) Register(c *gin.Context) {
	var body req.CreateUserRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	user, err := h.svc.Register(ctx, service.ActorID(ctx), body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
