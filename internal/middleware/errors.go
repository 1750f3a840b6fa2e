package middleware

import (
	"net/http"

	"go-timeoff/internal/shared/apperror"
)

var (
	ErrTokenNotFound = apperror.New(apperror.CodeUnauthorized, "Token not found", http.StatusUnauthorized)
	ErrInvalidToken  = apperror.New("INVALID_TOKEN", "Invalid token", http.StatusUnauthorized)
	ErrTokenExpired  = apperror.New("TOKEN_EXPIRED", "Token has expired", http.StatusUnauthorized)

	ErrRequestInProgress = apperror.New("PROCESSING", "Request with this idempotency key is still being processed", http.StatusConflict)
	ErrTooManyRequests   = apperror.New("RATE_LIMITED", "Too many requests", http.StatusTooManyRequests)
)
