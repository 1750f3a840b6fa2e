package employee

import (
	"context"
	"database/sql"

	"go-timeoff/internal/shared/connection"
	"go-timeoff/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, emp *Employee) error
	FindByID(ctx context.Context, org tenant.OrganizationContext, id string) (*Employee, error)
	FindAll(ctx context.Context, org tenant.OrganizationContext) ([]Employee, error)
	FindReports(ctx context.Context, org tenant.OrganizationContext, managerID string) ([]Employee, error)
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

func (r *repository) Create(ctx context.Context, emp *Employee) error {
	return mapRepositoryError(r.db.WithContext(ctx).Create(emp).Error)
}

func (r *repository) FindByID(ctx context.Context, org tenant.OrganizationContext, id string) (*Employee, error) {
	var emp Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(org)).
		First(&emp, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *repository) FindAll(ctx context.Context, org tenant.OrganizationContext) ([]Employee, error) {
	var emps []Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(org)).
		Order("full_name ASC").
		Find(&emps).Error
	return emps, err
}

func (r *repository) FindReports(ctx context.Context, org tenant.OrganizationContext, managerID string) ([]Employee, error) {
	var emps []Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(org)).
		Where("manager_id = ?", managerID).
		Order("full_name ASC").
		Find(&emps).Error
	return emps, err
}
