package rbac

import (
	"net/http"
	"strings"

	"go-timeoff/internal/authz"
	"go-timeoff/internal/shared/apperror"
	"go-timeoff/internal/shared/contextutil"
	"go-timeoff/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("rbac.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &Handler{service: service, logger: l}
}

func actorFrom(c *gin.Context) (authz.Actor, error) {
	actor, err := authz.NewActor(c.GetString("employee_id"), c.GetString("organization_id"))
	if err != nil {
		return authz.Actor{}, apperror.ErrUnauthorized
	}
	return actor, nil
}

// Check answers whether the current actor holds a capability.
func (h *Handler) Check(c *gin.Context) {
	log := contextutil.GetLogger(c.Request.Context(), h.logger)

	actor, err := actorFrom(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, apperror.MapValidationError(err))
		return
	}

	allowed, err := h.service.Can(
		c.Request.Context(),
		actor,
		authz.Capability(strings.TrimSpace(req.Action)),
		strings.TrimSpace(req.Resource),
	)
	if err != nil {
		log.Error("rbac check failed", zap.Error(err))
		response.FromError(c, apperror.ErrInternal.WithError(err))
		return
	}

	response.Success(c, http.StatusOK, EnforceResponse{Allowed: allowed}, nil)
}

func (h *Handler) MyRoles(c *gin.Context) {
	actor, err := actorFrom(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	roles, err := h.service.RolesOf(c.Request.Context(), actor)
	if err != nil {
		response.FromError(c, apperror.ErrInternal.WithError(err))
		return
	}

	response.Success(c, http.StatusOK, RolesResponse{Roles: roles}, nil)
}
