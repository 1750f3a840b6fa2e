package balance

import (
	"time"

	"github.com/google/uuid"
)

// BalanceRecord is the per-employee, per-period time-off ledger.
type BalanceRecord struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID `gorm:"type:uuid;uniqueIndex:uq_balance_employee_period"`
	EmployeeID     uuid.UUID `gorm:"type:uuid;uniqueIndex:uq_balance_employee_period"`
	Period         int       `gorm:"uniqueIndex:uq_balance_employee_period"`
	FromLastYear   Units     `gorm:"not null"`
	Accrued        Units     `gorm:"not null"`
	Taken          Units     `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (BalanceRecord) TableName() string {
	return "balance_records"
}
