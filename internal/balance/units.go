package balance

import "github.com/shopspring/decimal"

// Units counts time off in hundredths of a day.
type Units int64

const (
	UnitsPerDay Units = 100
	HalfDay     Units = UnitsPerDay / 2
)

func DaysToUnits(days int) Units {
	return Units(days) * UnitsPerDay
}

// Days renders units as a day count, e.g. 150 -> 1.5.
func (u Units) Days() decimal.Decimal {
	return decimal.New(int64(u), -2)
}

func (u Units) String() string {
	return u.Days().String()
}
