package employee

import (
	"go-timeoff/internal/authz"
	"go-timeoff/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, port authz.Port) {
	canRead := middleware.RBACAuthorize(port, authz.ResourceEmployee, authz.CapabilityRead)

	employees := r.Group("/employees", canRead)
	{
		employees.GET("", handler.GetAll)
		employees.GET("/:id", handler.GetByID)
		employees.GET("/:id/reports", handler.Reports)
	}
}
