package balance

import (
	"net/http"
	"strconv"
	"time"

	"go-timeoff/internal/shared/apperror"
	"go-timeoff/internal/shared/contextutil"
	"go-timeoff/internal/shared/response"
	"go-timeoff/internal/tenant"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
	now     func() time.Time
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("balance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.handler")
	}
	return &Handler{service: service, logger: l, now: time.Now}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := response.FromError(c, err)
	log := contextutil.GetLogger(c.Request.Context(), h.logger)
	if httpErr.Status >= http.StatusInternalServerError {
		log.Error("balance request failed", zap.String("path", c.FullPath()), zap.Error(err))
		return
	}
	log.Warn("balance request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
}

func (h *Handler) organization(c *gin.Context) (tenant.OrganizationContext, bool) {
	org, err := tenant.NewOrganizationContext(c.GetString("organization_id"))
	if err != nil {
		h.writeServiceError(c, apperror.ErrUnauthorized)
		return tenant.OrganizationContext{}, false
	}
	return org, true
}

func (h *Handler) Create(c *gin.Context) {
	org, ok := h.organization(c)
	if !ok {
		return
	}

	var req CreateBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Create(c.Request.Context(), org, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

// GetBalance serves ?period=YYYY, defaulting to the current year.
func (h *Handler) GetBalance(c *gin.Context) {
	org, ok := h.organization(c)
	if !ok {
		return
	}

	period := h.now().Year()
	if raw := c.Query("period"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			h.writeServiceError(c, apperror.InvalidField("period"))
			return
		}
		period = p
	}

	resp, err := h.service.GetBalance(c.Request.Context(), org, c.Param("employee_id"), period)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ListByEmployee(c *gin.Context) {
	org, ok := h.organization(c)
	if !ok {
		return
	}

	resp, err := h.service.ListByEmployee(c.Request.Context(), org, c.Param("employee_id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
