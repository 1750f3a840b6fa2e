package approval

import (
	"errors"

	approvalerrors "go-timeoff/internal/approval/errors"

	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return approvalerrors.ErrApprovalNotFound
	}
	return err
}
