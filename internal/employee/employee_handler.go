package employee

import (
	"net/http"

	"go-timeoff/internal/middleware"
	"go-timeoff/internal/shared/apperror"
	"go-timeoff/internal/shared/response"
	"go-timeoff/internal/tenant"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	directory Directory
	logger    *zap.Logger
}

func NewHandler(directory Directory, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("employee.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.handler")
	}
	return &Handler{directory: directory, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := response.FromError(c, err)
	h.logger.Warn("employee request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
}

func (h *Handler) organization(c *gin.Context) (tenant.OrganizationContext, bool) {
	org, err := tenant.NewOrganizationContext(c.GetString(middleware.ContextOrganizationID))
	if err != nil {
		h.writeServiceError(c, apperror.ErrUnauthorized)
		return tenant.OrganizationContext{}, false
	}
	return org, true
}

func (h *Handler) GetAll(c *gin.Context) {
	org, ok := h.organization(c)
	if !ok {
		return
	}

	resp, err := h.directory.GetAll(c.Request.Context(), org)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	org, ok := h.organization(c)
	if !ok {
		return
	}

	resp, err := h.directory.FindByID(c.Request.Context(), org, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Reports(c *gin.Context) {
	org, ok := h.organization(c)
	if !ok {
		return
	}

	resp, err := h.directory.Reports(c.Request.Context(), org, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
