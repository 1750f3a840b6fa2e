package timeoff

import (
	"time"

	"go-timeoff/internal/balance"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

type Type string

const (
	TypeVacation Type = "VACATION"
	TypeSick     Type = "SICK"
	TypeUnpaid   Type = "UNPAID"
)

var knownTypes = map[Type]bool{
	TypeVacation: true,
	TypeSick:     true,
	TypeUnpaid:   true,
}

// TimeOffRequest is never deleted; cancellation is a status.
// EndDate is nil exactly when IsHalfDay is set.
type TimeOffRequest struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index:idx_time_off_org_status"`
	EmployeeID     uuid.UUID `gorm:"type:uuid;not null;index:idx_time_off_employee_dates"`
	Reference      string    `gorm:"type:varchar(30);not null"`
	Period         int       `gorm:"not null"`

	Type      Type       `gorm:"type:varchar(30);not null"`
	Status    Status     `gorm:"type:varchar(20);not null;index:idx_time_off_org_status"`
	StartDate time.Time  `gorm:"type:date;not null;index:idx_time_off_employee_dates"`
	EndDate   *time.Time `gorm:"type:date"`
	IsHalfDay bool       `gorm:"not null"`

	// Units is what approval debits; WeekdayUnits is shown to people.
	Units        balance.Units `gorm:"not null"`
	WeekdayUnits balance.Units `gorm:"not null"`
	Reason       string        `gorm:"type:text"`

	CreatedBy uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TimeOffRequest) TableName() string {
	return "time_off_requests"
}

// LastDay is EndDate, or StartDate for a half-day request.
func (r TimeOffRequest) LastDay() time.Time {
	if r.EndDate != nil {
		return *r.EndDate
	}
	return r.StartDate
}
