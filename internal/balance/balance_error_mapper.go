package balance

import (
	"errors"

	balanceerrors "go-timeoff/internal/balance/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return balanceerrors.ErrBalanceNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return balanceerrors.ErrBalanceAlreadyExists
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return balanceerrors.ErrBalanceAlreadyExists
	}

	return err
}
