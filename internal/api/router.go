package api

import (
	"leadtrail/internal/metrics"
	"leadtrail/internal/middleware"
	"leadtrail/internal/model"

	"github.com/gin-gonic/gin"
)

// Mounter registers a resource's routes on its group.
type Mounter interface {
	Mount(g *gin.RouterGroup, write ...gin.HandlerFunc)
}

// Resource is one audited entity exposed under /v1/<Path>. Type is the
// entity type name recorded in activity_logs.model.
type Resource struct {
	Path    string
	Type    string
	Handler Mounter
}

type Handlers struct {
	Auth      *AuthHandler
	Health    *HealthHandler
	Resources []Resource

	LeadHistory    *HistoryHandler[model.LeadAssignHistory]
	BriefHistory   *HistoryHandler[model.BriefAssignHistory]
	PlannerHistory *HistoryHandler[model.PlannerHistory]
	Activity       *HistoryHandler[model.ActivityLog]
}

type RouterOptions struct {
	Tokens       middleware.TokenParser
	DevPass      bool
	WriteLimiter gin.HandlerFunc
	AllowOrigins []string
}

func RegisterRoutes(h Handlers, opts RouterOptions) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.CORS(opts.AllowOrigins),
		middleware.RequestID(),
		middleware.TraceMiddleware(),
		middleware.GinZapLogger(),
		middleware.GinZapRecovery(),
		middleware.HttpMiddleware(),
	)
	r.SetTrustedProxies(nil)

	r.GET("/health", h.Health.HealthCheck)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
	}

	jwt := middleware.JWTMiddleware(opts.Tokens, opts.DevPass)

	authProtected := r.Group("/v1/auth")
	authProtected.Use(jwt)
	{
		authProtected.GET("/me", h.Auth.GetProfile)
		authProtected.POST("/logout", h.Auth.Logout)
	}

	protected := r.Group("/v1")
	protected.Use(jwt)

	var write []gin.HandlerFunc
	if opts.WriteLimiter != nil {
		write = append(write, opts.WriteLimiter)
	}

	for _, res := range h.Resources {
		g := protected.Group("/" + res.Path)
		res.Handler.Mount(g, write...)
		g.GET("/:id/activity", h.Activity.ForEntity(res.Type))
		switch res.Type {
		case "Lead":
			g.GET("/:id/history", h.LeadHistory.ForEntity(res.Type))
		case "Brief":
			g.GET("/:id/history", h.BriefHistory.ForEntity(res.Type))
		case "Planner":
			g.GET("/:id/history", h.PlannerHistory.ForEntity(res.Type))
		}
	}

	history := protected.Group("/history")
	{
		h.LeadHistory.Mount(history.Group("/leads"))
		h.BriefHistory.Mount(history.Group("/briefs"))
		h.PlannerHistory.Mount(history.Group("/planners"))
		h.Activity.Mount(history.Group("/activity"))
	}
	return r
}
