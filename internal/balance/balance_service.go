package balance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	balanceerrors "go-timeoff/internal/balance/errors"
	"go-timeoff/internal/shared/apperror"
	"go-timeoff/internal/shared/contextutil"
	"go-timeoff/internal/tenant"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const BalanceKeyPrefix = "balances:"

func GetBalanceKey(organizationID, employeeID string, period int) string {
	return fmt.Sprintf("%s%s:%s:%d", BalanceKeyPrefix, organizationID, employeeID, period)
}

// MembershipChecker reports whether an employee belongs to an organization.
type MembershipChecker interface {
	BelongsToOrganization(ctx context.Context, org tenant.OrganizationContext, employeeID string) (bool, error)
}

//go:generate mockgen -source=balance_service.go -destination=mock/balance_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, org tenant.OrganizationContext, req CreateBalanceRequest) (BalanceResponse, error)
	GetBalance(ctx context.Context, org tenant.OrganizationContext, employeeID string, period int) (BalanceResponse, error)
	ListByEmployee(ctx context.Context, org tenant.OrganizationContext, employeeID string) ([]BalanceResponse, error)
	// Invalidate drops the cached balance; callers run it after the
	// transaction that changed the record has committed.
	Invalidate(ctx context.Context, organizationID, employeeID string, period int) error
}

type service struct {
	repo      Repository
	employees MembershipChecker
	rdb       *redis.Client
	ttl       time.Duration
	sf        *singleflight.Group
	logger    *zap.Logger
}

func NewService(repo Repository, employees MembershipChecker, rdb *redis.Client, ttl time.Duration, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &service{
		repo:      repo,
		employees: employees,
		rdb:       rdb,
		ttl:       ttl,
		sf:        &singleflight.Group{},
		logger:    l,
	}
}

func (s *service) Create(ctx context.Context, org tenant.OrganizationContext, req CreateBalanceRequest) (BalanceResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("create balance requested",
		zap.String("organization_id", org.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.Int("period", req.Period),
	)

	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return BalanceResponse{}, apperror.InvalidField("employee_id")
	}

	fields := apperror.FieldErrors{}
	fromLastYear, ok := daysToUnits(req.FromLastYear)
	if !ok {
		fields["from_last_year"] = fmt.Sprintf("From Last Year must be between 0 and %d days in hundredths of a day", MaxBalanceDays)
	}
	accrued, ok := daysToUnits(req.Accrued)
	if !ok {
		fields["accrued"] = fmt.Sprintf("Accrued must be between 0 and %d days in hundredths of a day", MaxBalanceDays)
	}
	if len(fields) > 0 {
		return BalanceResponse{}, apperror.ErrValidation.WithDetails(fields)
	}

	if s.employees != nil {
		member, err := s.employees.BelongsToOrganization(ctx, org, req.EmployeeID)
		if err != nil {
			return BalanceResponse{}, err
		}
		if !member {
			return BalanceResponse{}, apperror.InvalidField("employee_id")
		}
	}

	rec := &BalanceRecord{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		EmployeeID:     employeeUUID,
		Period:         req.Period,
		FromLastYear:   fromLastYear,
		Accrued:        accrued,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		mapped := mapRepositoryError(err)
		if apperror.IsServerError(mapped) {
			log.Error("create balance failed", zap.Error(err))
		} else {
			log.Warn("create balance rejected", zap.Error(mapped))
		}
		return BalanceResponse{}, mapped
	}

	s.evict(ctx, org.String(), req.EmployeeID, req.Period)

	log.Info("balance created",
		zap.String("balance_id", rec.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.Int("period", rec.Period),
	)
	return mapToResponse(rec), nil
}

func (s *service) GetBalance(ctx context.Context, org tenant.OrganizationContext, employeeID string, period int) (BalanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return BalanceResponse{}, apperror.InvalidField("employee_id")
	}
	if period < 1970 || period > 9999 {
		return BalanceResponse{}, balanceerrors.ErrInvalidPeriod
	}

	cacheKey := GetBalanceKey(org.String(), employeeID, period)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp BalanceResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		rec, err := s.repo.FindByEmployeePeriod(ctx, org, employeeID, period)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := mapToResponse(rec)
		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, cacheKey, jsonData, s.ttl)
			}
		}
		return resp, nil
	})
	if err != nil {
		return BalanceResponse{}, err
	}
	return v.(BalanceResponse), nil
}

func (s *service) ListByEmployee(ctx context.Context, org tenant.OrganizationContext, employeeID string) ([]BalanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, apperror.InvalidField("employee_id")
	}

	recs, err := s.repo.FindAllByEmployee(ctx, org, employeeID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	out := make([]BalanceResponse, len(recs))
	for i := range recs {
		out[i] = mapToResponse(&recs[i])
	}
	return out, nil
}

func (s *service) Invalidate(ctx context.Context, organizationID, employeeID string, period int) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, GetBalanceKey(organizationID, employeeID, period)).Err()
}

func (s *service) evict(ctx context.Context, organizationID, employeeID string, period int) {
	if err := s.Invalidate(ctx, organizationID, employeeID, period); err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("failed to invalidate balance cache",
			zap.String("employee_id", employeeID),
			zap.Int("period", period),
			zap.Error(err),
		)
	}
}
