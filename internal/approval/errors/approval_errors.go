package approvalerrors

import (
	"net/http"

	"go-timeoff/internal/shared/apperror"
)

var (
	ErrApprovalNotFound = apperror.New(
		apperror.CodeNotFound,
		"approval not found",
		http.StatusNotFound,
	)
	ErrApprovalNotPending = apperror.New(
		apperror.CodeInvalidState,
		"approval has already been decided",
		http.StatusConflict,
	)
	ErrNotAssignedApprover = apperror.New(
		apperror.CodeForbidden,
		"approval is assigned to another approver",
		http.StatusForbidden,
	)
	ErrSelfApproval = apperror.New(
		apperror.CodeForbidden,
		"you cannot decide your own request",
		http.StatusForbidden,
	)
	ErrInvalidDecision = apperror.New(
		apperror.CodeInvalidInput,
		"decision must be APPROVE or REJECT",
		http.StatusBadRequest,
	)
	ErrInvalidApprovalID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid approval id",
		http.StatusBadRequest,
	)
	// ErrNoApproverConfigured means neither a manager nor a fallback role
	// holder exists. An administrator has to fix the setup.
	ErrNoApproverConfigured = apperror.New(
		apperror.CodeNoApproverConfigured,
		"no approver configured for this request",
		http.StatusInternalServerError,
	)
	ErrUnknownSubjectKind = apperror.New(
		apperror.CodeInternalError,
		"no decider registered for approval subject",
		http.StatusInternalServerError,
	)
)
