package approval

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts approval endpoints. Deciding is authorized per
// approval by the service (assignee or approve_any), not by a route role.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	approvals := r.Group("/approvals")
	{
		approvals.GET("", handler.ListPending)
		approvals.GET("/:id", handler.GetByID)
		approvals.POST("/:id/approve", handler.Approve)
		approvals.POST("/:id/reject", handler.Reject)
	}
}
