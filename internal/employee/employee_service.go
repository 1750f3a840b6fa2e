package employee

import (
	"context"
	"errors"

	employeeerrors "go-timeoff/internal/employee/errors"
	"go-timeoff/internal/shared/contextutil"
	"go-timeoff/internal/tenant"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Directory answers reporting-line and membership questions for the
// approval router and the time-off lifecycle.
//
//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Directory interface {
	FindByID(ctx context.Context, org tenant.OrganizationContext, id string) (EmployeeResponse, error)
	GetAll(ctx context.Context, org tenant.OrganizationContext) ([]EmployeeResponse, error)
	// ManagerOf returns the direct manager id, or "" when none is recorded.
	ManagerOf(ctx context.Context, org tenant.OrganizationContext, employeeID string) (string, error)
	BelongsToOrganization(ctx context.Context, org tenant.OrganizationContext, employeeID string) (bool, error)
	// Reports lists the direct reports of managerID.
	Reports(ctx context.Context, org tenant.OrganizationContext, managerID string) ([]EmployeeResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Directory {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) FindByID(ctx context.Context, org tenant.OrganizationContext, id string) (EmployeeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	emp, err := s.repo.FindByID(ctx, org, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(emp), nil
}

func (s *service) GetAll(ctx context.Context, org tenant.OrganizationContext) ([]EmployeeResponse, error) {
	emps, err := s.repo.FindAll(ctx, org)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	return mapAll(emps), nil
}

func (s *service) Reports(ctx context.Context, org tenant.OrganizationContext, managerID string) ([]EmployeeResponse, error) {
	if _, err := s.FindByID(ctx, org, managerID); err != nil {
		return nil, err
	}

	emps, err := s.repo.FindReports(ctx, org, managerID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return mapAll(emps), nil
}

func (s *service) ManagerOf(ctx context.Context, org tenant.OrganizationContext, employeeID string) (string, error) {
	emp, err := s.FindByID(ctx, org, employeeID)
	if err != nil {
		return "", err
	}
	if emp.ManagerID == nil {
		return "", nil
	}

	// A manager outside the organization is treated as absent.
	ok, err := s.BelongsToOrganization(ctx, org, *emp.ManagerID)
	if err != nil {
		return "", err
	}
	if !ok {
		contextutil.GetLogger(ctx, s.logger).Warn("manager outside organization ignored",
			zap.String("employee_id", employeeID),
			zap.String("manager_id", *emp.ManagerID),
		)
		return "", nil
	}
	return *emp.ManagerID, nil
}

func (s *service) BelongsToOrganization(ctx context.Context, org tenant.OrganizationContext, employeeID string) (bool, error) {
	_, err := s.FindByID(ctx, org, employeeID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, employeeerrors.ErrEmployeeNotFound), errors.Is(err, employeeerrors.ErrInvalidEmployeeID):
		return false, nil
	default:
		return false, err
	}
}
