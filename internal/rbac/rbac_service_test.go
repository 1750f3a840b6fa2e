package rbac

import (
	"context"
	"errors"
	"testing"

	"go-timeoff/internal/authz"
	"go-timeoff/internal/rbac/infra"
	"go-timeoff/internal/tenant"

	"github.com/casbin/casbin/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const testOrgID = "6f1c2a5e-9f43-4c7b-8d1a-3e2b7c9d0a11"

type fakeRepo struct {
	roles    []EmployeeRoleRow
	perms    []RolePermissionRow
	rolesErr error
}

func (f *fakeRepo) GetEmployeeRoles(ctx context.Context, organizationID string) ([]EmployeeRoleRow, error) {
	if organizationID != testOrgID {
		return nil, nil
	}
	return f.roles, f.rolesErr
}

func (f *fakeRepo) GetRolePermissions(ctx context.Context, organizationID string) ([]RolePermissionRow, error) {
	if organizationID != testOrgID {
		return nil, nil
	}
	return f.perms, nil
}

func newTestEnforcer(t *testing.T) *casbin.Enforcer {
	e, err := infra.NewEnforcer()
	assert.NoError(t, err)
	return e
}

func newFixtureRepo() *fakeRepo {
	return &fakeRepo{
		roles: []EmployeeRoleRow{
			{EmployeeID: "emp-hr-2", RoleName: "hr_manager"},
			{EmployeeID: "emp-hr-1", RoleName: "hr_manager"},
			{EmployeeID: "emp-1", RoleName: "employee"},
		},
		perms: []RolePermissionRow{
			{RoleName: "employee", Resource: authz.ResourceTimeOff, Action: "create"},
			{RoleName: "hr_manager", Resource: authz.ResourceTimeOff, Action: "approve_any"},
			{RoleName: "hr_manager", Resource: authz.ResourceTimeOff, Action: "edit"},
		},
	}
}

func testActor(t *testing.T, id string) authz.Actor {
	actor, err := authz.NewActor(id, testOrgID)
	assert.NoError(t, err)
	return actor
}

func TestRBACService_Can(t *testing.T) {
	svc := NewService(newFixtureRepo(), newTestEnforcer(t), zap.NewNop())
	ctx := context.Background()

	t.Run("success employee may create", func(t *testing.T) {
		allowed, err := svc.Can(ctx, testActor(t, "emp-1"), authz.CapabilityCreate, authz.ResourceTimeOff)
		assert.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("negative employee may not approve any", func(t *testing.T) {
		allowed, err := svc.Can(ctx, testActor(t, "emp-1"), authz.CapabilityApproveAny, authz.ResourceTimeOff)
		assert.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("success hr manager may approve any", func(t *testing.T) {
		allowed, err := svc.Can(ctx, testActor(t, "emp-hr-1"), authz.CapabilityApproveAny, authz.ResourceTimeOff)
		assert.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("success edit implies read", func(t *testing.T) {
		allowed, err := svc.Can(ctx, testActor(t, "emp-hr-1"), authz.CapabilityRead, authz.ResourceTimeOff)
		assert.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("success approve any implies approve", func(t *testing.T) {
		allowed, err := svc.Can(ctx, testActor(t, "emp-hr-2"), authz.CapabilityApprove, authz.ResourceTimeOff)
		assert.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("negative implication does not cross resources", func(t *testing.T) {
		allowed, err := svc.Can(ctx, testActor(t, "emp-hr-1"), authz.CapabilityRead, authz.ResourceBalance)
		assert.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("negative create implies nothing", func(t *testing.T) {
		allowed, err := svc.Can(ctx, testActor(t, "emp-1"), authz.CapabilityRead, authz.ResourceTimeOff)
		assert.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("negative other organization has no policy", func(t *testing.T) {
		other, err := authz.NewActor("emp-hr-1", "0b7d5c3a-1111-4c7b-8d1a-3e2b7c9d0a99")
		assert.NoError(t, err)

		allowed, err := svc.Can(ctx, other, authz.CapabilityApproveAny, authz.ResourceTimeOff)
		assert.NoError(t, err)
		assert.False(t, allowed)
	})
}

func TestRBACService_Roles(t *testing.T) {
	svc := NewService(newFixtureRepo(), newTestEnforcer(t), zap.NewNop())
	ctx := context.Background()
	org, _ := tenant.NewOrganizationContext(testOrgID)

	t.Run("success users with role are sorted", func(t *testing.T) {
		users, err := svc.UsersWithRole(ctx, org, "hr_manager")
		assert.NoError(t, err)
		assert.Equal(t, []string{"emp-hr-1", "emp-hr-2"}, users)
	})

	t.Run("success has role", func(t *testing.T) {
		ok, err := svc.HasRole(ctx, testActor(t, "emp-1"), "employee")
		assert.NoError(t, err)
		assert.True(t, ok)

		ok, err = svc.HasRole(ctx, testActor(t, "emp-1"), "hr_manager")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("success unknown role has no holders", func(t *testing.T) {
		users, err := svc.UsersWithRole(ctx, org, "payroll_admin")
		assert.NoError(t, err)
		assert.Empty(t, users)
	})
}

func TestRBACService_RepoError(t *testing.T) {
	repo := newFixtureRepo()
	repo.rolesErr = errors.New("db down")
	svc := NewService(repo, newTestEnforcer(t), zap.NewNop())

	allowed, err := svc.Can(context.Background(), testActor(t, "emp-1"), authz.CapabilityCreate, authz.ResourceTimeOff)
	assert.Error(t, err)
	assert.False(t, allowed)
}
