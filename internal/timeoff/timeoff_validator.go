package timeoff

import (
	"strings"
	"time"

	"go-timeoff/internal/balance"
	balanceerrors "go-timeoff/internal/balance/errors"
	"go-timeoff/internal/shared/apperror"
)

// Draft is a proposed request after parsing and before any rule is applied.
type Draft struct {
	Type      Type
	StartDate *time.Time
	EndDate   *time.Time
	IsHalfDay bool
}

// EmployeeContext is what the validator needs to know about the employee.
// A nil Balance means no record exists for the period, i.e. zero remaining.
type EmployeeContext struct {
	Balance *balance.BalanceRecord
}

// ValidatedRequest carries the computed consumption for the lifecycle.
type ValidatedRequest struct {
	Type         Type
	StartDate    time.Time
	EndDate      *time.Time
	IsHalfDay    bool
	Period       int
	Units        balance.Units
	WeekdayUnits balance.Units
}

type Validator struct {
	balanceTypes map[Type]bool
}

// NewValidator builds a validator; balanceTypes are the request types that
// draw from the ledger.
func NewValidator(balanceTypes []string) *Validator {
	set := make(map[Type]bool, len(balanceTypes))
	for _, t := range balanceTypes {
		set[Type(strings.ToUpper(strings.TrimSpace(t)))] = true
	}
	return &Validator{balanceTypes: set}
}

func (v *Validator) ConsumesBalance(t Type) bool {
	return v.balanceTypes[t]
}

// CheckStructure applies the field rules that need no balance.
func (v *Validator) CheckStructure(d Draft) error {
	fields := apperror.FieldErrors{}

	switch {
	case d.Type == "":
		fields["type"] = "Type is required"
	case !knownTypes[d.Type]:
		fields["type"] = "Type must be one of VACATION SICK UNPAID"
	}

	if d.StartDate == nil {
		fields["start_date"] = "Start Date is required"
	}

	switch {
	case d.IsHalfDay && d.EndDate != nil:
		fields["end_date"] = "End Date must be empty for a half-day request"
	case !d.IsHalfDay && d.EndDate == nil:
		fields["end_date"] = "End Date is required"
	case !d.IsHalfDay && d.StartDate != nil && d.EndDate.Before(*d.StartDate):
		fields["end_date"] = "End Date must be on or after Start Date"
	case !d.IsHalfDay && d.StartDate != nil && d.EndDate.Year() != d.StartDate.Year():
		fields["end_date"] = "End Date must fall in the same year as Start Date"
	}

	if len(fields) > 0 {
		return apperror.ErrValidation.WithDetails(fields)
	}
	return nil
}

// Validate checks d and, for balance-consuming types, that the computed
// units fit the remaining balance.
func (v *Validator) Validate(d Draft, ec EmployeeContext) (ValidatedRequest, error) {
	if err := v.CheckStructure(d); err != nil {
		return ValidatedRequest{}, err
	}

	units, weekdays := Consumption(*d.StartDate, d.EndDate, d.IsHalfDay)
	vr := ValidatedRequest{
		Type:         d.Type,
		StartDate:    *d.StartDate,
		EndDate:      d.EndDate,
		IsHalfDay:    d.IsHalfDay,
		Period:       d.StartDate.Year(),
		Units:        units,
		WeekdayUnits: weekdays,
	}

	if !v.ConsumesBalance(d.Type) {
		return vr, nil
	}

	var remaining balance.Units
	if ec.Balance != nil {
		remaining = balance.Remaining(*ec.Balance)
	}
	if units > remaining {
		return ValidatedRequest{}, balanceerrors.ErrInsufficientBalance.WithDetails(apperror.FieldErrors{
			"balance": "Requested " + units.String() + " days but only " + remaining.String() + " remain",
		})
	}
	return vr, nil
}

// Consumption returns the inclusive calendar-day units and, for display,
// the units that fall on weekdays. A half day is HalfDay units.
func Consumption(start time.Time, end *time.Time, halfDay bool) (units, weekdays balance.Units) {
	if halfDay || end == nil {
		if isWeekday(start) {
			return balance.HalfDay, balance.HalfDay
		}
		return balance.HalfDay, 0
	}

	for d := start; !d.After(*end); d = d.AddDate(0, 0, 1) {
		units += balance.UnitsPerDay
		if isWeekday(d) {
			weekdays += balance.UnitsPerDay
		}
	}
	return units, weekdays
}

func isWeekday(d time.Time) bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
