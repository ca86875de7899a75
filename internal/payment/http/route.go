package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers payment routes and the per-reservation payment
// views. Every route is staff only.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, staffMiddleware gin.HandlerFunc) {
	payments := g.Group("/payments")
	payments.Use(authMiddleware, staffMiddleware)
	{
		payments.GET("", h.List)
		payments.POST("", h.Record)
		payments.GET("/:id", h.Get)
		payments.PATCH("/:id", h.Update)
		payments.PATCH("/:id/status", h.UpdateStatus)
		payments.DELETE("/:id", h.Delete)
	}

	reservations := g.Group("/reservations")
	reservations.Use(authMiddleware, staffMiddleware)
	{
		reservations.GET("/:id/payments", h.ListByReservation)
		reservations.GET("/:id/summary", h.Summary)
	}
}
