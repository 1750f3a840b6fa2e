package rbac

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the capability checks on an authenticated group.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	group := r.Group("/rbac")
	{
		group.POST("/check", handler.Check)
		group.GET("/me/roles", handler.MyRoles)
	}
}
