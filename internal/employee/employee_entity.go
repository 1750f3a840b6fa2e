package employee

import (
	"time"

	"github.com/google/uuid"
)

// Employee is the read model the time-off core needs: organization
// membership and the reporting line.
type Employee struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID  `gorm:"type:uuid;index"`
	ManagerID      *uuid.UUID `gorm:"type:uuid"`
	FullName       string
	Email          string `gorm:"uniqueIndex"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
