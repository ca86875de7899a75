package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers reservation routes. Every route is staff only.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, staffMiddleware gin.HandlerFunc) {
	group := g.Group("/reservations")

	group.Use(authMiddleware, staffMiddleware)
	{
		group.POST("/check-availability", h.CheckAvailability)
		group.GET("", h.List)
		group.POST("", h.Create)
		group.GET("/:id", h.Get)
		group.PUT("/:id/confirm", h.Confirm)
		group.PUT("/:id/finish", h.Finish)
		group.PUT("/:id/cancel", h.Cancel)
		group.DELETE("/:id", h.Delete)
	}
}
