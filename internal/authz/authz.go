// Package authz is the authorization port the core consults. It never
// implements role logic itself; rbac provides the casbin-backed adapter.
package authz

import (
	"context"

	"go-timeoff/internal/tenant"
)

type Capability string

const (
	CapabilityRead       Capability = "read"
	CapabilityCreate     Capability = "create"
	CapabilityEdit       Capability = "edit"
	CapabilityApprove    Capability = "approve"
	CapabilityApproveAny Capability = "approve_any"
)

const (
	ResourceTimeOff  = "time_off"
	ResourceApproval = "approval"
	ResourceBalance  = "balance"
	ResourceEmployee = "employee"
)

// Actor is the authenticated employee acting inside one organization.
type Actor struct {
	ID           string
	Organization tenant.OrganizationContext
}

//go:generate mockgen -source=authz.go -destination=mock/authz_mock.go -package=mock
type Port interface {
	Can(ctx context.Context, actor Actor, capability Capability, resource string) (bool, error)
	HasRole(ctx context.Context, actor Actor, role string) (bool, error)
}

// RoleDirectory lists the holders of a role inside an organization.
type RoleDirectory interface {
	UsersWithRole(ctx context.Context, org tenant.OrganizationContext, role string) ([]string, error)
}

// NewActor builds an actor from the ids the auth middleware stores.
func NewActor(employeeID, organizationID string) (Actor, error) {
	org, err := tenant.NewOrganizationContext(organizationID)
	if err != nil {
		return Actor{}, err
	}
	return Actor{ID: employeeID, Organization: org}, nil
}
