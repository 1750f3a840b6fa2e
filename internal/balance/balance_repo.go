package balance

import (
	"context"
	"database/sql"

	"go-timeoff/internal/shared/connection"
	"go-timeoff/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, rec *BalanceRecord) error
	FindByEmployeePeriod(ctx context.Context, org tenant.OrganizationContext, employeeID string, period int) (*BalanceRecord, error)
	// FindByEmployeePeriodForUpdate locks the row until the bound
	// transaction ends.
	FindByEmployeePeriodForUpdate(ctx context.Context, org tenant.OrganizationContext, employeeID string, period int) (*BalanceRecord, error)
	FindAllByEmployee(ctx context.Context, org tenant.OrganizationContext, employeeID string) ([]BalanceRecord, error)
	// ApplyDebit adds units to taken only while remaining still covers them.
	// It reports false when the guard rejected the update.
	ApplyDebit(ctx context.Context, id uuid.UUID, units Units) (bool, error)
	SetTaken(ctx context.Context, id uuid.UUID, taken Units) error
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

func (r *repository) Create(ctx context.Context, rec *BalanceRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *repository) FindByEmployeePeriod(ctx context.Context, org tenant.OrganizationContext, employeeID string, period int) (*BalanceRecord, error) {
	var rec BalanceRecord
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(org)).
		Where("employee_id = ? AND period = ?", employeeID, period).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repository) FindByEmployeePeriodForUpdate(ctx context.Context, org tenant.OrganizationContext, employeeID string, period int) (*BalanceRecord, error) {
	var rec BalanceRecord
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(org)).
		Where("employee_id = ? AND period = ?", employeeID, period).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repository) FindAllByEmployee(ctx context.Context, org tenant.OrganizationContext, employeeID string) ([]BalanceRecord, error) {
	var recs []BalanceRecord
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(org)).
		Where("employee_id = ?", employeeID).
		Order("period DESC").
		Find(&recs).Error
	return recs, err
}

func (r *repository) ApplyDebit(ctx context.Context, id uuid.UUID, units Units) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&BalanceRecord{}).
		Where("id = ?", id).
		Where("from_last_year + accrued - taken >= ?", units).
		Updates(map[string]any{
			"taken":      gorm.Expr("taken + ?", units),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) SetTaken(ctx context.Context, id uuid.UUID, taken Units) error {
	return r.db.WithContext(ctx).
		Model(&BalanceRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"taken":      taken,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}
