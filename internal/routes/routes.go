package routes

import (
	"net/http"

	"freelancehub/internal/handlers"
	"freelancehub/internal/middleware"
	"freelancehub/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// SetupRoutes wires middleware, handler groups and the WebSocket endpoint
// onto a fresh gin engine.
func SetupRoutes(r *gin.Engine, db *gorm.DB, h *handlers.AppHandlers, wsManager *ws.Manager) {
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.DBMiddleware(db))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	// signature-verified, no bearer token
	h.Webhook.RegisterRoutes(api)

	h.Auth.RegisterRoutes(api)

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware())
	{
		h.User.RegisterRoutes(authed)
		h.Project.RegisterRoutes(authed)
		h.Proposal.RegisterRoutes(authed)
		h.Milestone.RegisterRoutes(authed)
		h.Chat.RegisterRoutes(authed)
		h.Notification.RegisterRoutes(authed)
		h.Review.RegisterRoutes(authed)
	}

	r.GET("/ws", middleware.AuthMiddleware(), wsManager.ServeWS)
}
