package timeoff

import (
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type CreateTimeOffRequest struct {
	// EmployeeID defaults to the caller.
	EmployeeID string  `json:"employee_id" binding:"omitempty,uuid"`
	Type       string  `json:"type"`
	StartDate  string  `json:"start_date"`
	EndDate    *string `json:"end_date"`
	IsHalfDay  bool    `json:"is_half_day"`
	Reason     string  `json:"reason" binding:"max=1000"`
}

type ListFilter struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED CANCELLED"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

type TimeOffResponse struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organization_id"`
	EmployeeID     string          `json:"employee_id"`
	Reference      string          `json:"reference"`
	Period         int             `json:"period"`
	Type           string          `json:"type"`
	Status         string          `json:"status"`
	StartDate      string          `json:"start_date"`
	EndDate        *string         `json:"end_date"`
	IsHalfDay      bool            `json:"is_half_day"`
	Days           decimal.Decimal `json:"days"`
	Units          int64           `json:"units"`
	Weekdays       decimal.Decimal `json:"weekdays"`
	Reason         string          `json:"reason,omitempty"`
	CreatedBy      string          `json:"created_by"`
}

func mapToResponse(r TimeOffRequest) TimeOffResponse {
	resp := TimeOffResponse{
		ID:             r.ID.String(),
		OrganizationID: r.OrganizationID.String(),
		EmployeeID:     r.EmployeeID.String(),
		Reference:      r.Reference,
		Period:         r.Period,
		Type:           string(r.Type),
		Status:         string(r.Status),
		StartDate:      r.StartDate.Format(dateLayout),
		IsHalfDay:      r.IsHalfDay,
		Days:           r.Units.Days(),
		Units:          int64(r.Units),
		Weekdays:       r.WeekdayUnits.Days(),
		Reason:         r.Reason,
		CreatedBy:      r.CreatedBy.String(),
	}
	if r.EndDate != nil {
		end := r.EndDate.Format(dateLayout)
		resp.EndDate = &end
	}
	return resp
}

func mapToListResponse(items []TimeOffRequest) []TimeOffResponse {
	out := make([]TimeOffResponse, len(items))
	for i := range items {
		out[i] = mapToResponse(items[i])
	}
	return out
}
