package timeoff

import (
	"go-timeoff/internal/authz"
	"go-timeoff/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RegisterRoutes mounts the time-off endpoints. A nil rdb disables
// Idempotency-Key handling on create.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler, port authz.Port, rdb *redis.Client) {
	create := []gin.HandlerFunc{middleware.RBACAuthorize(port, authz.ResourceTimeOff, authz.CapabilityCreate)}
	if rdb != nil {
		create = append(create, middleware.Idempotency(rdb))
	}
	create = append(create, handler.Create)

	timeOffs := r.Group("/time-offs")
	{
		timeOffs.POST("", create...)
		timeOffs.GET("", middleware.RBACAuthorize(port, authz.ResourceTimeOff, authz.CapabilityRead), handler.GetAll)
		timeOffs.GET("/:id", middleware.RBACAuthorize(port, authz.ResourceTimeOff, authz.CapabilityRead), handler.GetByID)
		// Ownership is checked by the service.
		timeOffs.POST("/:id/cancel", handler.Cancel)
	}
}
