package schedule

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/financing-engine/internal/domain"
	pkgerrors "github.com/segyhp/financing-engine/pkg/errors"
)

var testStart = time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// withinCents asserts |got - want| <= 0.01.
func withinCents(t *testing.T, want, got decimal.Decimal) {
	t.Helper()
	diff := got.Sub(want).Abs()
	assert.True(t, diff.LessThanOrEqual(dec(0.01)), "want %s, got %s", want, got)
}

func TestGeneratePriceFixedPayment(t *testing.T) {
	installments, err := Generate(domain.SystemPrice, dec(1000), dec(12), 12, testStart)
	require.NoError(t, err)
	require.Len(t, installments, 12)

	for i, inst := range installments {
		assert.Equal(t, i+1, inst.Number)
		assert.Equal(t, domain.StatusPending, inst.Status)
		assert.Nil(t, inst.PaidDate)
		assert.Empty(t, inst.LinkedTransactionID)
		withinCents(t, dec(88.85), inst.Payment)
	}

	first := installments[0]
	withinCents(t, dec(10.00), first.InterestComponent)
	withinCents(t, dec(78.85), first.PrincipalComponent)
	withinCents(t, dec(921.15), first.Balance)

	last := installments[11]
	assert.True(t, last.Balance.IsZero(), "final balance must be zero, got %s", last.Balance)
}

func TestGenerateSACConstantAmortization(t *testing.T) {
	installments, err := Generate(domain.SystemSAC, dec(1000), dec(12), 12, testStart)
	require.NoError(t, err)
	require.Len(t, installments, 12)

	for _, inst := range installments {
		assert.True(t, inst.PrincipalComponent.Equal(dec(83.33)),
			"constant principal component, got %s at #%d", inst.PrincipalComponent, inst.Number)
	}

	first := installments[0]
	withinCents(t, dec(10.00), first.InterestComponent)
	withinCents(t, dec(93.33), first.Payment)
	withinCents(t, dec(916.67), first.Balance)

	last := installments[11]
	withinCents(t, dec(0.83), last.InterestComponent)
	withinCents(t, dec(84.17), last.Payment)
	assert.True(t, last.Balance.IsZero(), "final balance must be zero, got %s", last.Balance)
}

func TestGenerateZeroRatePrice(t *testing.T) {
	installments, err := Generate(domain.SystemPrice, dec(1200), dec(0), 12, testStart)
	require.NoError(t, err)

	for _, inst := range installments {
		assert.True(t, inst.Payment.Equal(dec(100)), "got %s", inst.Payment)
		assert.True(t, inst.InterestComponent.IsZero())
	}
	assert.True(t, installments[11].Balance.IsZero())
}

func TestGenerateUnsupportedSystem(t *testing.T) {
	_, err := Generate("BALLOON", dec(1000), dec(12), 12, testStart)
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrUnsupportedSystem)
}

func TestGenerateScheduleProperties(t *testing.T) {
	tests := []struct {
		name       string
		system     string
		principal  decimal.Decimal
		annualRate decimal.Decimal
		termMonths int
	}{
		{"PRICE short vehicle loan", domain.SystemPrice, dec(35000), dec(18.5), 48},
		{"PRICE long mortgage", domain.SystemPrice, dec(250000), dec(9.75), 360},
		{"SAC short vehicle loan", domain.SystemSAC, dec(35000), dec(18.5), 48},
		{"SAC long mortgage", domain.SystemSAC, dec(250000), dec(9.75), 360},
		{"PRICE tiny principal", domain.SystemPrice, dec(10), dec(12), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			installments, err := Generate(tt.system, tt.principal, tt.annualRate, tt.termMonths, testStart)
			require.NoError(t, err)
			require.Len(t, installments, tt.termMonths)

			prevBalance := tt.principal
			principalSum := decimal.Zero
			for i, inst := range installments {
				// Numbers contiguous from 1.
				require.Equal(t, i+1, inst.Number)

				// payment = principal + interest within rounding epsilon.
				recomposed := inst.PrincipalComponent.Add(inst.InterestComponent)
				withinCents(t, inst.Payment, recomposed)

				// Balance non-negative and non-increasing.
				assert.False(t, inst.Balance.IsNegative(), "negative balance at #%d", inst.Number)
				assert.True(t, inst.Balance.LessThanOrEqual(prevBalance),
					"balance grew at #%d: %s > %s", inst.Number, inst.Balance, prevBalance)
				prevBalance = inst.Balance

				principalSum = principalSum.Add(inst.PrincipalComponent)
			}

			assert.True(t, installments[tt.termMonths-1].Balance.IsZero(),
				"final balance %s", installments[tt.termMonths-1].Balance)

			// Principal conservation within cumulative rounding tolerance.
			tolerance := dec(0.01).Mul(decimal.NewFromInt(int64(tt.termMonths)))
			drift := principalSum.Sub(tt.principal).Abs()
			assert.True(t, drift.LessThanOrEqual(tolerance),
				"principal drift %s exceeds %s", drift, tolerance)
		})
	}
}

func TestGenerateDueDates(t *testing.T) {
	// Start on the 31st: due dates clamp to shorter months, never roll over.
	start := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	installments, err := Generate(domain.SystemSAC, dec(1200), dec(10), 4, start)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), installments[0].DueDate)
	assert.Equal(t, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), installments[1].DueDate)
	assert.Equal(t, time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC), installments[2].DueDate)
	assert.Equal(t, time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC), installments[3].DueDate)
}
