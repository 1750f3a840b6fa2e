package tenant

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInvalidOrganization = errors.New("invalid organization id")

// OrganizationContext identifies the tenant a call operates on. Services
// receive it explicitly; nothing reads the organization from ambient state.
type OrganizationContext struct {
	ID uuid.UUID
}

func NewOrganizationContext(id string) (OrganizationContext, error) {
	parsed, err := uuid.Parse(id)
	if err != nil || parsed == uuid.Nil {
		return OrganizationContext{}, ErrInvalidOrganization
	}
	return OrganizationContext{ID: parsed}, nil
}

func (o OrganizationContext) String() string {
	return o.ID.String()
}

func (o OrganizationContext) IsZero() bool {
	return o.ID == uuid.Nil
}

// Scope restricts a query to rows owned by the organization.
func Scope(org OrganizationContext) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("organization_id = ?", org.ID)
	}
}
