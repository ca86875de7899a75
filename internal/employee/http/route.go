package http

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the employee directory. Writes need ADMIN, reads any staff role.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, staffMiddleware, adminMiddleware gin.HandlerFunc) {
	employees := g.Group("/employees")
	employees.Use(authMiddleware, staffMiddleware)
	{
		employees.POST("", adminMiddleware, h.Create)
		employees.GET("", h.List)
		employees.GET("/:id", h.Get)
	}
}
