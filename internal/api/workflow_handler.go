package api

import (
	"net/http"

	"leadtrail/internal/dto/req"
	"leadtrail/internal/model"
	"leadtrail/internal/service"

	"github.com/gin-gonic/gin"
)

type LeadHandler struct {
	*EntityHandler[model.Lead, *model.Lead]
	svc *service.LeadService
}

func NewLeadHandler(svc *service.LeadService) *LeadHandler {
	return &LeadHandler{EntityHandler: NewEntityHandler[model.Lead, *model.Lead](svc), svc: svc}
}

func (h *LeadHandler) Mount(g *gin.RouterGroup, write ...gin.HandlerFunc) {
	h.EntityHandler.Mount(g, write...)
	g.PATCH("/:id/assign", chain(write, h.Assign)...)
	g.PATCH("/:id/priority", chain(write, h.ChangePriority)...)
	g.PATCH("/:id/status", chain(write, h.ChangeStatus)...)
	g.PATCH("/:id/call-status", chain(write, h.ChangeCallStatus)...)
}

func (h *LeadHandler) Assign(c *gin.Context) {
	var body req.AssignRequest
	id, ok := bindWorkflow(c, &body)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	lead, err := h.svc.Assign(ctx, service.ActorID(ctx), id, body.UserID)
	respond(c, lead, err)
}

func (h *LeadHandler) ChangePriority(c *gin.Context) {
	var body req.PriorityRequest
	id, ok := bindWorkflow(c, &body)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	lead, err := h.svc.ChangePriority(ctx, service.ActorID(ctx), id, body.PriorityID)
	respond(c, lead, err)
}

func (h *LeadHandler) ChangeStatus(c *gin.Context) {
	var body req.StatusRequest
	id, ok := bindWorkflow(c, &body)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	lead, err := h.svc.ChangeStatus(ctx, service.ActorID(ctx), id, body.StatusID)
	respond(c, lead, err)
}

func (h *LeadHandler) ChangeCallStatus(c *gin.Context) {
	var body req.StatusRequest
	id, ok := bindWorkflow(c, &body)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	lead, err := h.svc.ChangeCallStatus(ctx, service.ActorID(ctx), id, body.StatusID)
	respond(c, lead, err)
}

type BriefHandler struct {
	*EntityHandler[model.Brief, *model.Brief]
	svc *service.BriefService
}

func NewBriefHandler(svc *service.BriefService) *BriefHandler {
	return &BriefHandler{EntityHandler: NewEntityHandler[model.Brief, *model.Brief](svc), svc: svc}
}

func (h *BriefHandler) Mount(g *gin.RouterGroup, write ...gin.HandlerFunc) {
	h.EntityHandler.Mount(g, write...)
	g.PATCH("/:id/assign", chain(write, h.Assign)...)
	g.PATCH("/:id/status", chain(write, h.ChangeStatus)...)
}

func (h *BriefHandler) Assign(c *gin.Context) {
	var body req.AssignRequest
	id, ok := bindWorkflow(c, &body)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	brief, err := h.svc.Assign(ctx, service.ActorID(ctx), id, body.UserID)
	respond(c, brief, err)
}

func (h *BriefHandler) ChangeStatus(c *gin.Context) {
	var body req.StatusRequest
	id, ok := bindWorkflow(c, &body)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	brief, err := h.svc.ChangeStatus(ctx, service.ActorID(ctx), id, body.StatusID)
	respond(c, brief, err)
}

type PlannerHandler struct {
	*EntityHandler[model.Planner, *model.Planner]
	svc *service.PlannerService
}

func NewPlannerHandler(svc *service.PlannerService) *PlannerHandler {
	return &PlannerHandler{EntityHandler: NewEntityHandler[model.Planner, *model.Planner](svc), svc: svc}
}

func (h *PlannerHandler) Mount(g *gin.RouterGroup, write ...gin.HandlerFunc) {
	h.EntityHandler.Mount(g, write...)
	g.PATCH("/:id/assign", chain(write, h.Assign)...)
}

func (h *PlannerHandler) Assign(c *gin.Context) {
	var body req.AssignRequest
	id, ok := bindWorkflow(c, &body)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	planner, err := h.svc.Assign(ctx, service.ActorID(ctx), id, body.UserID)
	respond(c, planner, err)
}

func bindWorkflow(c *gin.Context, body any) (uint64, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return 0, false
	}
	if err := c.ShouldBindJSON(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, false
	}
	return id, true
}

func respond(c *gin.Context, body any, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, body)
}
