package balance

import (
	"context"
	"database/sql"
	"errors"

	balanceerrors "go-timeoff/internal/balance/errors"
	"go-timeoff/internal/shared/contextutil"
	"go-timeoff/internal/tenant"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Ledger applies debits and credits inside the caller's transaction so the
// balance change commits or rolls back with the request transition.
//
//go:generate mockgen -source=balance_ledger.go -destination=mock/balance_ledger_mock.go -package=mock
type Ledger interface {
	// Find returns the period record, or nil when none was opened.
	Find(ctx context.Context, tx *sql.Tx, org tenant.OrganizationContext, employeeID string, period int) (*BalanceRecord, error)
	Debit(ctx context.Context, tx *sql.Tx, org tenant.OrganizationContext, employeeID string, period int, units Units) (BalanceRecord, error)
	Credit(ctx context.Context, tx *sql.Tx, org tenant.OrganizationContext, employeeID string, period int, units Units) (BalanceRecord, error)
}

type ledger struct {
	repo   Repository
	logger *zap.Logger
}

func NewLedger(repo Repository, logger ...*zap.Logger) Ledger {
	l := zap.L().Named("balance.ledger")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.ledger")
	}
	return &ledger{repo: repo, logger: l}
}

func (l *ledger) Find(ctx context.Context, tx *sql.Tx, org tenant.OrganizationContext, employeeID string, period int) (*BalanceRecord, error) {
	rec, err := l.repo.WithTx(tx).FindByEmployeePeriod(ctx, org, employeeID, period)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (l *ledger) Debit(ctx context.Context, tx *sql.Tx, org tenant.OrganizationContext, employeeID string, period int, units Units) (BalanceRecord, error) {
	log := contextutil.GetLogger(ctx, l.logger)
	repo := l.repo.WithTx(tx)

	locked, err := repo.FindByEmployeePeriodForUpdate(ctx, org, employeeID, period)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn("debit without balance record",
			zap.String("employee_id", employeeID),
			zap.Int("period", period),
			zap.Int64("units", int64(units)),
		)
		return BalanceRecord{}, balanceerrors.ErrInsufficientBalance
	}
	if err != nil {
		return BalanceRecord{}, err
	}

	next, err := Debit(*locked, units)
	if err != nil {
		log.Warn("debit rejected",
			zap.String("balance_id", locked.ID.String()),
			zap.Int64("remaining", int64(Remaining(*locked))),
			zap.Int64("units", int64(units)),
		)
		return *locked, err
	}

	// The row lock serializes writers; the guarded update keeps the
	// invariant even where the driver cannot lock rows.
	ok, err := repo.ApplyDebit(ctx, locked.ID, units)
	if err != nil {
		return *locked, err
	}
	if !ok {
		log.Warn("debit lost the balance guard", zap.String("balance_id", locked.ID.String()))
		return *locked, balanceerrors.ErrInsufficientBalance
	}

	log.Info("balance debited",
		zap.String("balance_id", next.ID.String()),
		zap.Int64("units", int64(units)),
		zap.Int64("remaining", int64(Remaining(next))),
	)
	return next, nil
}

func (l *ledger) Credit(ctx context.Context, tx *sql.Tx, org tenant.OrganizationContext, employeeID string, period int, units Units) (BalanceRecord, error) {
	log := contextutil.GetLogger(ctx, l.logger)
	repo := l.repo.WithTx(tx)

	locked, err := repo.FindByEmployeePeriodForUpdate(ctx, org, employeeID, period)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error("credit without balance record",
			zap.String("employee_id", employeeID),
			zap.Int("period", period),
		)
		return BalanceRecord{}, balanceerrors.ErrInvalidCreditAmount
	}
	if err != nil {
		return BalanceRecord{}, err
	}

	next, err := Credit(*locked, units)
	if err != nil {
		log.Error("credit exceeds taken",
			zap.String("balance_id", locked.ID.String()),
			zap.Int64("taken", int64(locked.Taken)),
			zap.Int64("units", int64(units)),
		)
		return next, err
	}

	if err := repo.SetTaken(ctx, next.ID, next.Taken); err != nil {
		return *locked, err
	}

	log.Info("balance credited",
		zap.String("balance_id", next.ID.String()),
		zap.Int64("units", int64(units)),
		zap.Int64("remaining", int64(Remaining(next))),
	)
	return next, nil
}
