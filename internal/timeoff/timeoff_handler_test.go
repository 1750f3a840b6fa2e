package timeoff_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-timeoff/internal/authz"
	balanceerrors "go-timeoff/internal/balance/errors"
	"go-timeoff/internal/shared/apperror"
	"go-timeoff/internal/timeoff"
	timeofferrors "go-timeoff/internal/timeoff/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTimeOffService struct {
	CreateFn  func(ctx context.Context, actor authz.Actor, req timeoff.CreateTimeOffRequest) (timeoff.TimeOffResponse, error)
	GetAllFn  func(ctx context.Context, actor authz.Actor, filter timeoff.ListFilter) ([]timeoff.TimeOffResponse, error)
	GetByIDFn func(ctx context.Context, actor authz.Actor, id string) (timeoff.TimeOffResponse, error)
	CancelFn  func(ctx context.Context, actor authz.Actor, id string) (timeoff.TimeOffResponse, error)
}

func (f *fakeTimeOffService) Create(ctx context.Context, actor authz.Actor, req timeoff.CreateTimeOffRequest) (timeoff.TimeOffResponse, error) {
	return f.CreateFn(ctx, actor, req)
}
func (f *fakeTimeOffService) Approve(ctx context.Context, actor authz.Actor, id string) (timeoff.TimeOffResponse, error) {
	return timeoff.TimeOffResponse{}, nil
}
func (f *fakeTimeOffService) Reject(ctx context.Context, actor authz.Actor, id, reason string) (timeoff.TimeOffResponse, error) {
	return timeoff.TimeOffResponse{}, nil
}
func (f *fakeTimeOffService) Cancel(ctx context.Context, actor authz.Actor, id string) (timeoff.TimeOffResponse, error) {
	return f.CancelFn(ctx, actor, id)
}
func (f *fakeTimeOffService) GetAll(ctx context.Context, actor authz.Actor, filter timeoff.ListFilter) ([]timeoff.TimeOffResponse, error) {
	return f.GetAllFn(ctx, actor, filter)
}
func (f *fakeTimeOffService) GetByID(ctx context.Context, actor authz.Actor, id string) (timeoff.TimeOffResponse, error) {
	return f.GetByIDFn(ctx, actor, id)
}

type envelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Meta  map[string]any  `json:"meta"`
	Error map[string]any  `json:"error"`
}

func setupTimeOffRouter(svc timeoff.Service, employeeID, orgID string) *gin.Engine {
	apperror.Init()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("employee_id", employeeID)
		c.Set("organization_id", orgID)
		c.Next()
	})
	h := timeoff.NewHandler(svc, zap.NewNop())
	r.POST("/time-offs", h.Create)
	r.GET("/time-offs", h.GetAll)
	r.GET("/time-offs/:id", h.GetByID)
	r.POST("/time-offs/:id/cancel", h.Cancel)
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestTimeOffHandler_Create(t *testing.T) {
	employeeID, orgID := uuid.NewString(), uuid.NewString()

	t.Run("success", func(t *testing.T) {
		svc := &fakeTimeOffService{
			CreateFn: func(ctx context.Context, actor authz.Actor, req timeoff.CreateTimeOffRequest) (timeoff.TimeOffResponse, error) {
				assert.Equal(t, employeeID, actor.ID)
				assert.Equal(t, orgID, actor.Organization.String())
				assert.Equal(t, "VACATION", req.Type)
				require.NotNil(t, req.EndDate)
				assert.Equal(t, "2025-01-17", *req.EndDate)
				return timeoff.TimeOffResponse{ID: "to-1", Status: "PENDING"}, nil
			},
		}
		r := setupTimeOffRouter(svc, employeeID, orgID)

		body := `{"type":"VACATION","start_date":"2025-01-15","end_date":"2025-01-17"}`
		req := httptest.NewRequest(http.MethodPost, "/time-offs", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, decode(t, w).Ok)
	})

	t.Run("negative insufficient balance", func(t *testing.T) {
		svc := &fakeTimeOffService{
			CreateFn: func(ctx context.Context, actor authz.Actor, req timeoff.CreateTimeOffRequest) (timeoff.TimeOffResponse, error) {
				return timeoff.TimeOffResponse{}, balanceerrors.ErrInsufficientBalance.WithDetails(apperror.FieldErrors{
					"balance": "Requested 6 days but only 1 remain",
				})
			},
		}
		r := setupTimeOffRouter(svc, employeeID, orgID)

		body := `{"type":"VACATION","start_date":"2025-01-13","end_date":"2025-01-18"}`
		req := httptest.NewRequest(http.MethodPost, "/time-offs", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		env := decode(t, w)
		assert.False(t, env.Ok)
		assert.Equal(t, "INSUFFICIENT_BALANCE", env.Error["code"])
	})

	t.Run("negative bad employee id", func(t *testing.T) {
		r := setupTimeOffRouter(&fakeTimeOffService{}, employeeID, orgID)

		body := `{"employee_id":"nope","type":"VACATION","start_date":"2025-01-15"}`
		req := httptest.NewRequest(http.MethodPost, "/time-offs", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("negative missing organization", func(t *testing.T) {
		r := setupTimeOffRouter(&fakeTimeOffService{}, employeeID, "")

		req := httptest.NewRequest(http.MethodPost, "/time-offs", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestTimeOffHandler_GetAll(t *testing.T) {
	employeeID, orgID := uuid.NewString(), uuid.NewString()

	svc := &fakeTimeOffService{
		GetAllFn: func(ctx context.Context, actor authz.Actor, filter timeoff.ListFilter) ([]timeoff.TimeOffResponse, error) {
			assert.Equal(t, "PENDING", filter.Status)
			return []timeoff.TimeOffResponse{{ID: "a"}, {ID: "b"}, {ID: "c"}}, nil
		},
	}
	r := setupTimeOffRouter(svc, employeeID, orgID)

	req := httptest.NewRequest(http.MethodGet, "/time-offs?status=PENDING&page=2&page_size=2", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	var items []timeoff.TimeOffResponse
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "c", items[0].ID)
	assert.EqualValues(t, 3, env.Meta["total"])
}

func TestTimeOffHandler_Cancel(t *testing.T) {
	employeeID, orgID := uuid.NewString(), uuid.NewString()

	t.Run("negative invalid transition", func(t *testing.T) {
		svc := &fakeTimeOffService{
			CancelFn: func(ctx context.Context, actor authz.Actor, id string) (timeoff.TimeOffResponse, error) {
				assert.Equal(t, "to-1", id)
				return timeoff.TimeOffResponse{}, timeofferrors.ErrInvalidTransition
			},
		}
		r := setupTimeOffRouter(svc, employeeID, orgID)

		req := httptest.NewRequest(http.MethodPost, "/time-offs/to-1/cancel", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "INVALID_STATE", decode(t, w).Error["code"])
	})

	t.Run("success", func(t *testing.T) {
		svc := &fakeTimeOffService{
			CancelFn: func(ctx context.Context, actor authz.Actor, id string) (timeoff.TimeOffResponse, error) {
				return timeoff.TimeOffResponse{ID: id, Status: "CANCELLED"}, nil
			},
		}
		r := setupTimeOffRouter(svc, employeeID, orgID)

		req := httptest.NewRequest(http.MethodPost, "/time-offs/to-1/cancel", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
