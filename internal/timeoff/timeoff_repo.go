package timeoff

import (
	"context"
	"database/sql"
	"time"

	"go-timeoff/internal/shared/connection"
	"go-timeoff/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=timeoff_repo.go -destination=mock/timeoff_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, r *TimeOffRequest) error
	FindByID(ctx context.Context, org tenant.OrganizationContext, id string) (*TimeOffRequest, error)
	FindByIDForUpdate(ctx context.Context, org tenant.OrganizationContext, id string) (*TimeOffRequest, error)
	FindAll(ctx context.Context, org tenant.OrganizationContext, employeeID, status string) ([]TimeOffRequest, error)
	// PendingIDs returns which of ids are still PENDING.
	PendingIDs(ctx context.Context, org tenant.OrganizationContext, ids []uuid.UUID) ([]uuid.UUID, error)
	// HasOverlap reports a PENDING or APPROVED request of the employee
	// touching [start, end]. A date holds at most two half-day requests.
	HasOverlap(ctx context.Context, org tenant.OrganizationContext, employeeID string, start, end time.Time, halfDay bool) (bool, error)
	// UpdateStatus moves the request from one status to another and
	// reports false when it was no longer in from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (bool, error)
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

func (r *repository) Create(ctx context.Context, req *TimeOffRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) FindByID(ctx context.Context, org tenant.OrganizationContext, id string) (*TimeOffRequest, error) {
	var req TimeOffRequest
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(org)).
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, org tenant.OrganizationContext, id string) (*TimeOffRequest, error) {
	var req TimeOffRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(org)).
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) FindAll(ctx context.Context, org tenant.OrganizationContext, employeeID, status string) ([]TimeOffRequest, error) {
	db := r.db.WithContext(ctx).Scopes(tenant.Scope(org))
	if employeeID != "" {
		db = db.Where("employee_id = ?", employeeID)
	}
	if status != "" {
		db = db.Where("status = ?", status)
	}

	var items []TimeOffRequest
	err := db.Order("start_date DESC").Order("created_at DESC").Find(&items).Error
	return items, err
}

func (r *repository) PendingIDs(ctx context.Context, org tenant.OrganizationContext, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var pending []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&TimeOffRequest{}).
		Scopes(tenant.Scope(org)).
		Where("id IN ? AND status = ?", ids, StatusPending).
		Pluck("id", &pending).Error
	return pending, err
}

func (r *repository) HasOverlap(ctx context.Context, org tenant.OrganizationContext, employeeID string, start, end time.Time, halfDay bool) (bool, error) {
	touching := func(isHalfDay bool) (int64, error) {
		var count int64
		err := r.db.WithContext(ctx).
			Model(&TimeOffRequest{}).
			Scopes(tenant.Scope(org)).
			Where("employee_id = ?", employeeID).
			Where("status IN ?", []Status{StatusPending, StatusApproved}).
			Where("is_half_day = ?", isHalfDay).
			Where("NOT (COALESCE(end_date, start_date) < ? OR start_date > ?)", start, end).
			Count(&count).Error
		return count, err
	}

	full, err := touching(false)
	if err != nil || full > 0 {
		return full > 0, err
	}
	half, err := touching(true)
	if err != nil {
		return false, err
	}
	if halfDay {
		return half >= 2, nil
	}
	return half > 0, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&TimeOffRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
