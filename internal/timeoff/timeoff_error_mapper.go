package timeoff

import (
	"errors"

	approvalerrors "go-timeoff/internal/approval/errors"
	timeofferrors "go-timeoff/internal/timeoff/errors"

	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return timeofferrors.ErrTimeOffNotFound
	}
	return err
}

func mapApprovalError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return approvalerrors.ErrApprovalNotFound
	}
	return err
}
