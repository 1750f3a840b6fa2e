package employee_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-timeoff/internal/employee"
	employeeerrors "go-timeoff/internal/employee/errors"
	"go-timeoff/internal/shared/testdb"
	"go-timeoff/internal/tenant"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fixture struct {
	org       tenant.OrganizationContext
	manager   employee.Employee
	report    employee.Employee
	orphan    employee.Employee
	outsider  employee.Employee
	directory employee.Directory
}

func setupDirectory(t *testing.T) *fixture {
	db := testdb.Open(t, &employee.Employee{})
	repo := employee.NewRepository(db)
	ctx := context.Background()

	org := tenant.OrganizationContext{ID: uuid.New()}
	otherOrg := uuid.New()

	outsider := employee.Employee{ID: uuid.New(), OrganizationID: otherOrg, FullName: "Outsider", Email: "out@example.com"}
	manager := employee.Employee{ID: uuid.New(), OrganizationID: org.ID, FullName: "Manager", Email: "mgr@example.com"}
	report := employee.Employee{ID: uuid.New(), OrganizationID: org.ID, ManagerID: &manager.ID, FullName: "Report", Email: "rep@example.com"}
	orphan := employee.Employee{ID: uuid.New(), OrganizationID: org.ID, ManagerID: &outsider.ID, FullName: "Orphan", Email: "orp@example.com"}

	for _, e := range []*employee.Employee{&outsider, &manager, &report, &orphan} {
		assert.NoError(t, repo.Create(ctx, e))
	}

	return &fixture{
		org:       org,
		manager:   manager,
		report:    report,
		orphan:    orphan,
		outsider:  outsider,
		directory: employee.NewService(repo, zap.NewNop()),
	}
}

func TestDirectory_ManagerOf(t *testing.T) {
	f := setupDirectory(t)
	ctx := context.Background()

	t.Run("success direct manager", func(t *testing.T) {
		id, err := f.directory.ManagerOf(ctx, f.org, f.report.ID.String())
		assert.NoError(t, err)
		assert.Equal(t, f.manager.ID.String(), id)
	})

	t.Run("success no manager", func(t *testing.T) {
		id, err := f.directory.ManagerOf(ctx, f.org, f.manager.ID.String())
		assert.NoError(t, err)
		assert.Empty(t, id)
	})

	t.Run("success manager in other organization is ignored", func(t *testing.T) {
		id, err := f.directory.ManagerOf(ctx, f.org, f.orphan.ID.String())
		assert.NoError(t, err)
		assert.Empty(t, id)
	})

	t.Run("negative unknown employee", func(t *testing.T) {
		_, err := f.directory.ManagerOf(ctx, f.org, uuid.NewString())
		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})
}

func TestDirectory_BelongsToOrganization(t *testing.T) {
	f := setupDirectory(t)
	ctx := context.Background()

	ok, err := f.directory.BelongsToOrganization(ctx, f.org, f.report.ID.String())
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.directory.BelongsToOrganization(ctx, f.org, f.outsider.ID.String())
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.directory.BelongsToOrganization(ctx, f.org, "not-a-uuid")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestDirectory_Reports(t *testing.T) {
	f := setupDirectory(t)
	ctx := context.Background()

	t.Run("success lists direct reports only", func(t *testing.T) {
		reports, err := f.directory.Reports(ctx, f.org, f.manager.ID.String())
		assert.NoError(t, err)
		assert.Len(t, reports, 1)
		assert.Equal(t, f.report.ID.String(), reports[0].ID)
	})

	t.Run("negative manager outside organization", func(t *testing.T) {
		_, err := f.directory.Reports(ctx, f.org, f.outsider.ID.String())
		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})
}

func TestRepository_CreateDuplicateEmail(t *testing.T) {
	db := testdb.Open(t, &employee.Employee{})
	repo := employee.NewRepository(db)
	ctx := context.Background()
	orgID := uuid.New()

	assert.NoError(t, repo.Create(ctx, &employee.Employee{ID: uuid.New(), OrganizationID: orgID, FullName: "A", Email: "same@example.com"}))
	err := repo.Create(ctx, &employee.Employee{ID: uuid.New(), OrganizationID: orgID, FullName: "B", Email: "same@example.com"})
	assert.ErrorIs(t, err, employeeerrors.ErrEmployeeAlreadyExists)
}

func TestEmployeeHandler_GetByID(t *testing.T) {
	f := setupDirectory(t)
	gin.SetMode(gin.TestMode)
	handler := employee.NewHandler(f.directory, zap.NewNop())

	r := gin.New()
	r.GET("/employees/:id", func(c *gin.Context) {
		c.Set("organization_id", f.org.String())
		c.Next()
	}, handler.GetByID)

	t.Run("success", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/employees/"+f.report.ID.String(), nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), f.manager.ID.String())
	})

	t.Run("negative other organization", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/employees/"+f.outsider.ID.String(), nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
