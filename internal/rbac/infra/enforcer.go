package infra

import (
	_ "embed"

	"go-timeoff/internal/authz"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

//go:embed model.conf
var modelText string

// impliedCapabilities lists, per granted capability, what else it grants on
// the same resource.
var impliedCapabilities = map[authz.Capability][]authz.Capability{
	authz.CapabilityEdit:       {authz.CapabilityRead},
	authz.CapabilityApproveAny: {authz.CapabilityApprove},
}

// NewEnforcer builds an enforcer for the organization-domain model with
// capability implications seeded. Role policies are loaded per
// organization by rbac.Service.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	return e, SeedImpliedCapabilities(e)
}

// SeedImpliedCapabilities adds the g2 action links. ClearPolicy drops
// them, so callers reseed after every clear.
func SeedImpliedCapabilities(e *casbin.Enforcer) error {
	for granted, implied := range impliedCapabilities {
		for _, capability := range implied {
			if _, err := e.AddNamedGroupingPolicy("g2", string(capability), string(granted)); err != nil {
				return err
			}
		}
	}
	return nil
}
