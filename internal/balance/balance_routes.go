package balance

import (
	"go-timeoff/internal/authz"
	"go-timeoff/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, port authz.Port) {
	balances := r.Group("/balances")
	{
		balances.POST("", middleware.RBACAuthorize(port, authz.ResourceBalance, authz.CapabilityCreate), handler.Create)
		balances.GET("/:employee_id", middleware.RBACAuthorize(port, authz.ResourceBalance, authz.CapabilityRead), handler.GetBalance)
		balances.GET("/:employee_id/all", middleware.RBACAuthorize(port, authz.ResourceBalance, authz.CapabilityRead), handler.ListByEmployee)
	}
}
