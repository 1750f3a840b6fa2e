package balance

import balanceerrors "go-timeoff/internal/balance/errors"

// Remaining is fromLastYear + accrued - taken.
func Remaining(r BalanceRecord) Units {
	return r.FromLastYear + r.Accrued - r.Taken
}

// Debit returns r with units added to taken. It never lets remaining drop
// below zero.
func Debit(r BalanceRecord, units Units) (BalanceRecord, error) {
	if units <= 0 {
		return r, balanceerrors.ErrInvalidUnits
	}
	if units > Remaining(r) {
		return r, balanceerrors.ErrInsufficientBalance
	}
	r.Taken += units
	return r, nil
}

// Credit returns r with units removed from taken. Crediting more than was
// taken clamps taken at zero and reports ErrInvalidCreditAmount alongside
// the clamped record.
func Credit(r BalanceRecord, units Units) (BalanceRecord, error) {
	if units <= 0 {
		return r, balanceerrors.ErrInvalidCreditAmount
	}
	if units > r.Taken {
		r.Taken = 0
		return r, balanceerrors.ErrInvalidCreditAmount
	}
	r.Taken -= units
	return r, nil
}
