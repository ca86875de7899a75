package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers invoice routes. Every route is staff only.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, staffMiddleware gin.HandlerFunc) {
	invoices := g.Group("/invoices")
	invoices.Use(authMiddleware, staffMiddleware)
	{
		invoices.GET("", h.List)
		invoices.POST("", h.Create)
		invoices.POST("/proforma", h.IssueProforma)
		invoices.GET("/:id", h.Get)
		invoices.DELETE("/:id", h.Delete)
	}

	g.GET("/reservations/:id/invoice", authMiddleware, staffMiddleware, h.GetByReservation)
}
