package approval

import (
	"context"
	"database/sql"
	"time"

	"go-timeoff/internal/shared/connection"
	"go-timeoff/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=approval_repo.go -destination=mock/approval_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *Approval) error
	FindByID(ctx context.Context, org tenant.OrganizationContext, id string) (*Approval, error)
	FindBySubject(ctx context.Context, org tenant.OrganizationContext, subject Approvable) (*Approval, error)
	ListPending(ctx context.Context, org tenant.OrganizationContext, assignedTo *string) ([]Approval, error)
	// Decide moves a pending approval to status. It reports false when the
	// approval was no longer pending.
	Decide(ctx context.Context, id uuid.UUID, status Status, decidedBy uuid.UUID, reason *string, decidedAt time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: connection.BindTx(r.db, tx)}
}

func (r *repository) Create(ctx context.Context, a *Approval) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) FindByID(ctx context.Context, org tenant.OrganizationContext, id string) (*Approval, error) {
	var a Approval
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(org)).
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) FindBySubject(ctx context.Context, org tenant.OrganizationContext, subject Approvable) (*Approval, error) {
	var a Approval
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(org)).
		Where("subject_kind = ? AND subject_id = ?", subject.Kind, subject.ID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) ListPending(ctx context.Context, org tenant.OrganizationContext, assignedTo *string) ([]Approval, error) {
	db := r.db.WithContext(ctx).
		Scopes(tenant.Scope(org)).
		Where("status = ?", StatusPending)
	if assignedTo != nil {
		db = db.Where("assigned_to = ?", *assignedTo)
	}

	var items []Approval
	err := db.Order("created_at ASC").Find(&items).Error
	return items, err
}

func (r *repository) Decide(ctx context.Context, id uuid.UUID, status Status, decidedBy uuid.UUID, reason *string, decidedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Approval{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]any{
			"status":           status,
			"approved_by":      decidedBy,
			"rejection_reason": reason,
			"decided_at":       decidedAt,
			"updated_at":       decidedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
