package timeofferrors

import (
	"net/http"

	"go-timeoff/internal/shared/apperror"
)

var (
	ErrTimeOffNotFound = apperror.New(
		apperror.CodeNotFound,
		"time-off request not found",
		http.StatusNotFound,
	)
	ErrInvalidRequestID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid time-off request id",
		http.StatusBadRequest,
	)
	// ErrInvalidTransition means the request is not in the state the
	// operation starts from. Nothing was changed.
	ErrInvalidTransition = apperror.New(
		apperror.CodeInvalidState,
		"time-off request is not in a state that allows this action",
		http.StatusConflict,
	)
	ErrTimeOffOverlap = apperror.New(
		apperror.CodeConflict,
		"time-off already requested in an overlapping period",
		http.StatusConflict,
	)
	ErrCancelNotAllowed = apperror.New(
		apperror.CodeForbidden,
		"only the requesting employee or an editor may cancel this request",
		http.StatusForbidden,
	)
	ErrCreateOnBehalfNotAllowed = apperror.New(
		apperror.CodeForbidden,
		"you may only request time off for yourself",
		http.StatusForbidden,
	)
)
