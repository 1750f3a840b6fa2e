package balance

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateBalanceRequest opens a period record. Amounts are in days and may
// carry up to two decimals.
type CreateBalanceRequest struct {
	EmployeeID   string          `json:"employee_id" binding:"required,uuid"`
	Period       int             `json:"period" binding:"required,min=1970,max=9999"`
	FromLastYear decimal.Decimal `json:"from_last_year"`
	Accrued      decimal.Decimal `json:"accrued"`
}

type BalanceResponse struct {
	ID             string          `json:"id"`
	EmployeeID     string          `json:"employee_id"`
	Period         int             `json:"period"`
	FromLastYear   decimal.Decimal `json:"from_last_year"`
	Accrued        decimal.Decimal `json:"accrued"`
	Taken          decimal.Decimal `json:"taken"`
	Remaining      decimal.Decimal `json:"remaining"`
	RemainingUnits int64           `json:"remaining_units"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func mapToResponse(r *BalanceRecord) BalanceResponse {
	remaining := Remaining(*r)
	return BalanceResponse{
		ID:             r.ID.String(),
		EmployeeID:     r.EmployeeID.String(),
		Period:         r.Period,
		FromLastYear:   r.FromLastYear.Days(),
		Accrued:        r.Accrued.Days(),
		Taken:          r.Taken.Days(),
		Remaining:      remaining.Days(),
		RemainingUnits: int64(remaining),
		UpdatedAt:      r.UpdatedAt,
	}
}

// MaxBalanceDays caps a single balance amount.
const MaxBalanceDays = 9999

var (
	hundred = decimal.NewFromInt(int64(UnitsPerDay))
	maxDays = decimal.NewFromInt(MaxBalanceDays)
)

// daysToUnits converts a day amount to units. ok is false for negative
// amounts, amounts above MaxBalanceDays or amounts finer than a hundredth
// of a day.
func daysToUnits(days decimal.Decimal) (Units, bool) {
	if days.IsNegative() || days.GreaterThan(maxDays) {
		return 0, false
	}
	u := days.Mul(hundred)
	if !u.IsInteger() {
		return 0, false
	}
	return Units(u.IntPart()), true
}
