package rbac

import (
	"context"
	"sort"
	"sync"

	"go-timeoff/internal/authz"
	"go-timeoff/internal/rbac/infra"
	"go-timeoff/internal/shared/contextutil"
	"go-timeoff/internal/tenant"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	authz.Port
	authz.RoleDirectory

	LoadOrganizationPolicy(ctx context.Context, organizationID string) error
	Enforce(ctx context.Context, req EnforceRequest) (bool, error)
	RolesOf(ctx context.Context, actor authz.Actor) ([]string, error)
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	mu       sync.Mutex
	logger   *zap.Logger
}

func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &service{
		repo:     repo,
		enforcer: enforcer,
		logger:   l,
	}
}

func (s *service) LoadOrganizationPolicy(ctx context.Context, organizationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadPolicyUnlocked(ctx, organizationID)
}

// loadPolicyUnlocked replaces the enforcer policy with one organization's
// roles and permissions. Callers hold s.mu.
func (s *service) loadPolicyUnlocked(ctx context.Context, organizationID string) error {
	log := contextutil.GetLogger(ctx, s.logger)
	s.enforcer.ClearPolicy()
	if err := infra.SeedImpliedCapabilities(s.enforcer); err != nil {
		return err
	}

	employeeRoles, err := s.repo.GetEmployeeRoles(ctx, organizationID)
	if err != nil {
		return err
	}
	for _, er := range employeeRoles {
		if _, err := s.enforcer.AddGroupingPolicy(er.EmployeeID, er.RoleName, organizationID); err != nil {
			return err
		}
	}

	rolePerms, err := s.repo.GetRolePermissions(ctx, organizationID)
	if err != nil {
		return err
	}
	for _, rp := range rolePerms {
		if _, err := s.enforcer.AddPolicy(rp.RoleName, organizationID, rp.Resource, rp.Action); err != nil {
			return err
		}
	}

	log.Debug("rbac policy loaded",
		zap.String("organization_id", organizationID),
		zap.Int("employee_roles", len(employeeRoles)),
		zap.Int("role_permissions", len(rolePerms)),
	)
	return nil
}

func (s *service) Enforce(ctx context.Context, req EnforceRequest) (bool, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadPolicyUnlocked(ctx, req.OrganizationID); err != nil {
		log.Error("failed to load rbac policy", zap.String("organization_id", req.OrganizationID), zap.Error(err))
		return false, err
	}

	allowed, err := s.enforcer.Enforce(req.EmployeeID, req.OrganizationID, req.Resource, req.Action)
	if err != nil {
		return false, err
	}

	log.Debug("rbac enforce result",
		zap.String("employee_id", req.EmployeeID),
		zap.String("organization_id", req.OrganizationID),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

func (s *service) Can(ctx context.Context, actor authz.Actor, capability authz.Capability, resource string) (bool, error) {
	return s.Enforce(ctx, EnforceRequest{
		EmployeeID:     actor.ID,
		OrganizationID: actor.Organization.String(),
		Resource:       resource,
		Action:         string(capability),
	})
}

func (s *service) RolesOf(ctx context.Context, actor authz.Actor) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	organizationID := actor.Organization.String()
	if err := s.loadPolicyUnlocked(ctx, organizationID); err != nil {
		return nil, err
	}

	roles := s.enforcer.GetRolesForUserInDomain(actor.ID, organizationID)
	sort.Strings(roles)
	return roles, nil
}

func (s *service) HasRole(ctx context.Context, actor authz.Actor, role string) (bool, error) {
	roles, err := s.RolesOf(ctx, actor)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r == role {
			return true, nil
		}
	}
	return false, nil
}

// UsersWithRole returns the employee ids holding role, sorted so callers
// picking the first holder are deterministic.
func (s *service) UsersWithRole(ctx context.Context, org tenant.OrganizationContext, role string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	organizationID := org.String()
	if err := s.loadPolicyUnlocked(ctx, organizationID); err != nil {
		return nil, err
	}

	users := s.enforcer.GetUsersForRoleInDomain(role, organizationID)
	sort.Strings(users)
	return users, nil
}
