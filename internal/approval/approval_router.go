package approval

import (
	"context"

	approvalerrors "go-timeoff/internal/approval/errors"
	"go-timeoff/internal/authz"
	"go-timeoff/internal/shared/contextutil"
	"go-timeoff/internal/tenant"

	"go.uber.org/zap"
)

// ReportingLine resolves an employee's direct manager. An empty id means
// no manager is recorded.
type ReportingLine interface {
	ManagerOf(ctx context.Context, org tenant.OrganizationContext, employeeID string) (string, error)
}

//go:generate mockgen -source=approval_router.go -destination=mock/approval_router_mock.go -package=mock
type Router interface {
	// ResolveApprover picks the direct manager, else the first holder of
	// the fallback role configured for requestType.
	ResolveApprover(ctx context.Context, org tenant.OrganizationContext, requesterID, requestType string) (string, error)
}

type router struct {
	line          ReportingLine
	roles         authz.RoleDirectory
	fallbackRoles map[string]string
	defaultRole   string
	logger        *zap.Logger
}

// NewRouter builds a router. fallbackRoles maps a request type to a role
// name; the "*" entry applies to types without their own entry.
func NewRouter(line ReportingLine, roles authz.RoleDirectory, fallbackRoles map[string]string, logger ...*zap.Logger) Router {
	l := zap.L().Named("approval.router")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approval.router")
	}
	return &router{
		line:          line,
		roles:         roles,
		fallbackRoles: fallbackRoles,
		defaultRole:   fallbackRoles["*"],
		logger:        l,
	}
}

func (r *router) ResolveApprover(ctx context.Context, org tenant.OrganizationContext, requesterID, requestType string) (string, error) {
	log := contextutil.GetLogger(ctx, r.logger)

	managerID, err := r.line.ManagerOf(ctx, org, requesterID)
	if err != nil {
		return "", err
	}
	if managerID != "" && managerID != requesterID {
		log.Debug("approver resolved to manager",
			zap.String("requester_id", requesterID),
			zap.String("approver_id", managerID),
		)
		return managerID, nil
	}

	role := r.fallbackRoles[requestType]
	if role == "" {
		role = r.defaultRole
	}
	if role != "" {
		holders, err := r.roles.UsersWithRole(ctx, org, role)
		if err != nil {
			return "", err
		}
		for _, holder := range holders {
			if holder == requesterID {
				continue
			}
			log.Debug("approver resolved to fallback role",
				zap.String("requester_id", requesterID),
				zap.String("role", role),
				zap.String("approver_id", holder),
			)
			return holder, nil
		}
	}

	log.Error("no approver configured",
		zap.String("organization_id", org.String()),
		zap.String("requester_id", requesterID),
		zap.String("request_type", requestType),
		zap.String("fallback_role", role),
	)
	return "", approvalerrors.ErrNoApproverConfigured
}
