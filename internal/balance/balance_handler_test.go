package balance_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-timeoff/internal/balance"
	balanceerrors "go-timeoff/internal/balance/errors"
	"go-timeoff/internal/tenant"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeBalanceService struct {
	CreateFn     func(ctx context.Context, org tenant.OrganizationContext, req balance.CreateBalanceRequest) (balance.BalanceResponse, error)
	GetBalanceFn func(ctx context.Context, org tenant.OrganizationContext, employeeID string, period int) (balance.BalanceResponse, error)
	ListFn       func(ctx context.Context, org tenant.OrganizationContext, employeeID string) ([]balance.BalanceResponse, error)
}

func (f *fakeBalanceService) Create(ctx context.Context, org tenant.OrganizationContext, req balance.CreateBalanceRequest) (balance.BalanceResponse, error) {
	return f.CreateFn(ctx, org, req)
}
func (f *fakeBalanceService) GetBalance(ctx context.Context, org tenant.OrganizationContext, employeeID string, period int) (balance.BalanceResponse, error) {
	return f.GetBalanceFn(ctx, org, employeeID, period)
}
func (f *fakeBalanceService) ListByEmployee(ctx context.Context, org tenant.OrganizationContext, employeeID string) ([]balance.BalanceResponse, error) {
	return f.ListFn(ctx, org, employeeID)
}
func (f *fakeBalanceService) Invalidate(ctx context.Context, organizationID, employeeID string, period int) error {
	return nil
}

type envelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error map[string]any  `json:"error"`
}

func setupBalanceRouter(svc balance.Service, orgID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("organization_id", orgID)
		c.Next()
	})
	h := balance.NewHandler(svc, zap.NewNop())
	r.POST("/balances", h.Create)
	r.GET("/balances/:employee_id", h.GetBalance)
	r.GET("/balances/:employee_id/all", h.ListByEmployee)
	return r
}

func TestBalanceHandler_GetBalance(t *testing.T) {
	orgID := uuid.NewString()
	employeeID := uuid.NewString()

	t.Run("success explicit period", func(t *testing.T) {
		svc := &fakeBalanceService{
			GetBalanceFn: func(ctx context.Context, org tenant.OrganizationContext, eid string, period int) (balance.BalanceResponse, error) {
				assert.Equal(t, orgID, org.String())
				assert.Equal(t, employeeID, eid)
				assert.Equal(t, 2025, period)
				return balance.BalanceResponse{EmployeeID: eid, Period: period, RemainingUnits: 1700}, nil
			},
		}
		w := httptest.NewRecorder()
		setupBalanceRouter(svc, orgID).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/balances/"+employeeID+"?period=2025", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var env envelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.True(t, env.Ok)
	})

	t.Run("negative bad period", func(t *testing.T) {
		w := httptest.NewRecorder()
		setupBalanceRouter(&fakeBalanceService{}, orgID).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/balances/"+employeeID+"?period=abc", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("negative not found", func(t *testing.T) {
		svc := &fakeBalanceService{
			GetBalanceFn: func(ctx context.Context, org tenant.OrganizationContext, eid string, period int) (balance.BalanceResponse, error) {
				return balance.BalanceResponse{}, balanceerrors.ErrBalanceNotFound
			},
		}
		w := httptest.NewRecorder()
		setupBalanceRouter(svc, orgID).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/balances/"+employeeID, nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBalanceHandler_Create(t *testing.T) {
	orgID := uuid.NewString()

	t.Run("negative missing employee", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/balances", strings.NewReader(`{"period":2025,"accrued":"10"}`))
		req.Header.Set("Content-Type", "application/json")
		setupBalanceRouter(&fakeBalanceService{}, orgID).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var env envelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, "VALIDATION_ERROR", env.Error["code"])
	})

	t.Run("success", func(t *testing.T) {
		employeeID := uuid.NewString()
		svc := &fakeBalanceService{
			CreateFn: func(ctx context.Context, org tenant.OrganizationContext, req balance.CreateBalanceRequest) (balance.BalanceResponse, error) {
				assert.Equal(t, "10", req.Accrued.String())
				return balance.BalanceResponse{EmployeeID: req.EmployeeID, Period: req.Period}, nil
			},
		}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/balances", strings.NewReader(`{"employee_id":"`+employeeID+`","period":2025,"accrued":10}`))
		req.Header.Set("Content-Type", "application/json")
		setupBalanceRouter(svc, orgID).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})
}
