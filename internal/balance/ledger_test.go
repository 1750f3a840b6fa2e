package balance

import (
	"math/rand"
	"testing"

	balanceerrors "go-timeoff/internal/balance/errors"

	"github.com/stretchr/testify/assert"
)

func TestRemaining(t *testing.T) {
	r := BalanceRecord{FromLastYear: 250, Accrued: 2000, Taken: 300}
	assert.Equal(t, Units(1950), Remaining(r))
	assert.Equal(t, "19.5", Remaining(r).String())
}

func TestDebit(t *testing.T) {
	t.Run("success three day vacation", func(t *testing.T) {
		r := BalanceRecord{Accrued: DaysToUnits(20)}
		assert.Equal(t, Units(2000), Remaining(r))

		next, err := Debit(r, DaysToUnits(3))
		assert.NoError(t, err)
		assert.Equal(t, Units(300), next.Taken)
		assert.Equal(t, Units(1700), Remaining(next))
	})

	t.Run("success exact remaining", func(t *testing.T) {
		next, err := Debit(BalanceRecord{Accrued: 150}, 150)
		assert.NoError(t, err)
		assert.Equal(t, Units(0), Remaining(next))
	})

	t.Run("negative exceeds remaining", func(t *testing.T) {
		r := BalanceRecord{Accrued: DaysToUnits(1)}
		next, err := Debit(r, DaysToUnits(6))
		assert.ErrorIs(t, err, balanceerrors.ErrInsufficientBalance)
		assert.Equal(t, r, next)
	})

	t.Run("negative non positive units", func(t *testing.T) {
		_, err := Debit(BalanceRecord{Accrued: 100}, 0)
		assert.ErrorIs(t, err, balanceerrors.ErrInvalidUnits)
	})
}

func TestCredit(t *testing.T) {
	t.Run("success restores units", func(t *testing.T) {
		next, err := Credit(BalanceRecord{Accrued: 2000, Taken: 300}, 300)
		assert.NoError(t, err)
		assert.Equal(t, Units(0), next.Taken)
	})

	t.Run("negative credit beyond taken clamps to zero", func(t *testing.T) {
		next, err := Credit(BalanceRecord{Accrued: 2000, Taken: 100}, 300)
		assert.ErrorIs(t, err, balanceerrors.ErrInvalidCreditAmount)
		assert.Equal(t, Units(0), next.Taken)
	})

	t.Run("negative never debited", func(t *testing.T) {
		next, err := Credit(BalanceRecord{Accrued: 2000}, 50)
		assert.ErrorIs(t, err, balanceerrors.ErrInvalidCreditAmount)
		assert.Equal(t, Units(0), next.Taken)
	})
}

func TestLedgerProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		r := BalanceRecord{
			FromLastYear: Units(rng.Intn(1000)),
			Accrued:      Units(rng.Intn(3000)),
		}
		var debited []Units

		for step := 0; step < 20; step++ {
			units := Units(rng.Intn(400) + 1)
			if rng.Intn(3) == 0 && len(debited) > 0 {
				last := debited[len(debited)-1]
				debited = debited[:len(debited)-1]
				next, err := Credit(r, last)
				assert.NoError(t, err)
				r = next
			} else {
				before := r
				next, err := Debit(r, units)
				if err != nil {
					assert.ErrorIs(t, err, balanceerrors.ErrInsufficientBalance)
					assert.Equal(t, before, next)
					continue
				}
				debited = append(debited, units)
				r = next
			}

			assert.Equal(t, r.FromLastYear+r.Accrued-r.Taken, Remaining(r))
			assert.GreaterOrEqual(t, int64(Remaining(r)), int64(0))
		}
	}
}

func TestDebitCreditRoundTrip(t *testing.T) {
	r := BalanceRecord{FromLastYear: 100, Accrued: 2000, Taken: 450}
	debited, err := Debit(r, 350)
	assert.NoError(t, err)
	restored, err := Credit(debited, 350)
	assert.NoError(t, err)
	assert.Equal(t, r.Taken, restored.Taken)
}
