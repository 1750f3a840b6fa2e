package balanceerrors

import (
	"net/http"

	"go-timeoff/internal/shared/apperror"
)

var (
	ErrBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"Balance record not found",
		http.StatusNotFound,
	)
	ErrBalanceAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Balance record for this employee and period already exists",
		http.StatusConflict,
	)
	// ErrInsufficientBalance carries a "balance" field error so clients can
	// show it next to the date inputs.
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficientBalance,
		"Insufficient time-off balance",
		http.StatusUnprocessableEntity,
	).WithDetails(apperror.FieldErrors{"balance": "requested days exceed the remaining balance"})
	ErrInvalidCreditAmount = apperror.New(
		apperror.CodeInternalError,
		"Credit exceeds the units taken from this balance",
		http.StatusInternalServerError,
	)
	ErrInvalidUnits = apperror.New(
		apperror.CodeInvalidInput,
		"Units must be positive",
		http.StatusBadRequest,
	)
	ErrInvalidPeriod = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid period",
		http.StatusBadRequest,
	)
)
