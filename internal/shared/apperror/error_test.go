package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"go-timeoff/internal/shared/apperror"

	"github.com/stretchr/testify/assert"
)

var errSentinel = apperror.New("SOMETHING", "something happened", http.StatusBadRequest)

func TestAppError_WithDetails(t *testing.T) {
	t.Run("copy keeps sentinel identity", func(t *testing.T) {
		err := errSentinel.WithDetails(apperror.FieldErrors{"type": "Type is required"})

		assert.ErrorIs(t, err, errSentinel)
		assert.Nil(t, errSentinel.Details)
		assert.Equal(t, apperror.FieldErrors{"type": "Type is required"}, apperror.FieldsOf(err))
	})

	t.Run("wrapped copy still matches", func(t *testing.T) {
		err := fmt.Errorf("create: %w", errSentinel.WithDetails(nil))
		assert.ErrorIs(t, err, errSentinel)
	})

	t.Run("negative different sentinel with same code", func(t *testing.T) {
		other := apperror.New("SOMETHING", "other", http.StatusBadRequest)
		assert.False(t, errors.Is(errSentinel.WithDetails(nil), other))
	})
}

func TestToHTTP(t *testing.T) {
	t.Run("client error keeps message and details", func(t *testing.T) {
		httpErr := apperror.ToHTTP(apperror.RequiredField("start_date"))

		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
		assert.Equal(t, apperror.CodeValidation, httpErr.Code)
		assert.Equal(t, apperror.FieldErrors{"start_date": "start_date is required"}, httpErr.Details)
	})

	t.Run("server error hides message", func(t *testing.T) {
		err := apperror.New(apperror.CodeNoApproverConfigured, "no approver for VACATION", http.StatusInternalServerError)
		httpErr := apperror.ToHTTP(err)

		assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
		assert.Equal(t, apperror.CodeNoApproverConfigured, httpErr.Code)
		assert.Equal(t, apperror.ErrInternal.Message, httpErr.Message)
		assert.True(t, apperror.IsServerError(err))
	})

	t.Run("plain error is internal", func(t *testing.T) {
		httpErr := apperror.ToHTTP(errors.New("db down"))
		assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
		assert.Equal(t, apperror.CodeInternalError, httpErr.Code)
	})
}
