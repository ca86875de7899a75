package http

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the client directory. All routes are staff only.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, staffMiddleware gin.HandlerFunc) {
	clients := g.Group("/clients")
	clients.Use(authMiddleware, staffMiddleware)
	{
		clients.POST("", h.Create)
		clients.GET("", h.List)
		clients.GET("/:id", h.Get)
	}
}
