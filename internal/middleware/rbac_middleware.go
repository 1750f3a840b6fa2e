package middleware

import (
	"go-timeoff/internal/authz"
	"go-timeoff/internal/shared/apperror"
	"go-timeoff/internal/shared/contextutil"
	"go-timeoff/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RBACAuthorize rejects the request unless the actor holds capability on
// resource. Finer checks (ownership, assignment) stay in the services.
func RBACAuthorize(port authz.Port, resource string, capability authz.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := authz.NewActor(c.GetString(ContextEmployeeID), c.GetString(ContextOrganizationID))
		if err != nil {
			response.FromError(c, apperror.ErrUnauthorized)
			c.Abort()
			return
		}

		allowed, err := port.Can(c.Request.Context(), actor, capability, resource)
		if err != nil {
			contextutil.GetLogger(c.Request.Context(), zap.L()).Error("rbac enforce failed",
				zap.String("resource", resource),
				zap.String("capability", string(capability)),
				zap.Error(err),
			)
			response.FromError(c, apperror.ErrInternal.WithError(err))
			c.Abort()
			return
		}

		if !allowed {
			response.FromError(c, apperror.ErrForbidden.WithDetails(map[string]string{
				"required": resource + ":" + string(capability),
			}))
			c.Abort()
			return
		}
		c.Next()
	}
}
