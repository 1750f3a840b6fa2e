package tenant_test

import (
	"testing"

	"go-timeoff/internal/tenant"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewOrganizationContext(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		id := uuid.New()
		org, err := tenant.NewOrganizationContext(id.String())

		assert.NoError(t, err)
		assert.Equal(t, id, org.ID)
		assert.Equal(t, id.String(), org.String())
		assert.False(t, org.IsZero())
	})

	t.Run("negative malformed", func(t *testing.T) {
		_, err := tenant.NewOrganizationContext("acme")
		assert.ErrorIs(t, err, tenant.ErrInvalidOrganization)
	})

	t.Run("negative nil uuid", func(t *testing.T) {
		_, err := tenant.NewOrganizationContext(uuid.Nil.String())
		assert.ErrorIs(t, err, tenant.ErrInvalidOrganization)
	})
}
