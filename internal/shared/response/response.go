package response

import (
	"go-timeoff/internal/shared/apperror"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PaginationMeta struct {
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Envelope is the shape of every API response.
type Envelope struct {
	Ok    bool            `json:"ok"`
	Data  any             `json:"data,omitempty"`
	Meta  *PaginationMeta `json:"meta,omitempty"`
	Error *ErrorBody      `json:"error,omitempty"`
}

func Success(c *gin.Context, status int, data any, meta *PaginationMeta) {
	c.JSON(status, Envelope{Ok: true, Data: data, Meta: meta})
}

// FromError aborts the chain with err's apperror mapping and returns it.
func FromError(c *gin.Context, err error) apperror.HTTPError {
	httpErr := apperror.ToHTTP(err)
	c.AbortWithStatusJSON(httpErr.Status, Envelope{
		Error: &ErrorBody{
			Code:    httpErr.Code,
			Message: httpErr.Message,
			Details: httpErr.Details,
		},
	})
	return httpErr
}

// Paginate returns the 1-based page of items. Out-of-range pages are empty;
// pageSize falls back to DefaultPageSize and is capped at MaxPageSize.
func Paginate[T any](items []T, page, pageSize int) ([]T, PaginationMeta) {
	page = max(page, 1)
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	pageSize = min(pageSize, MaxPageSize)

	total := len(items)
	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)

	return items[start:end], PaginationMeta{
		Total:      int64(total),
		TotalPages: (total + pageSize - 1) / pageSize,
		Page:       page,
		PageSize:   pageSize,
	}
}
