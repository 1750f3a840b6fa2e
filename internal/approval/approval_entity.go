package approval

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// SubjectKind tags what an approval is about.
type SubjectKind string

const SubjectTimeOffRequest SubjectKind = "TIME_OFF_REQUEST"

// Approvable is a typed reference to the entity an approval covers.
type Approvable struct {
	Kind SubjectKind `gorm:"type:varchar(40);not null;uniqueIndex:uq_approvals_subject"`
	ID   uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:uq_approvals_subject"`
}

func TimeOffRequestSubject(id uuid.UUID) Approvable {
	return Approvable{Kind: SubjectTimeOffRequest, ID: id}
}

type Approval struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;index:idx_approvals_org_assignee"`
	Subject        Approvable `gorm:"embedded;embeddedPrefix:subject_"`
	AssignedTo     uuid.UUID  `gorm:"type:uuid;not null;index:idx_approvals_org_assignee"`
	Status         Status     `gorm:"type:varchar(20);not null"`

	ApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	RejectionReason *string    `gorm:"type:text"`
	DecidedAt       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Approval) TableName() string {
	return "approvals"
}
