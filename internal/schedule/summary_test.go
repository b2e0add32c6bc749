package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/financing-engine/internal/domain"
)

func buildFinancing(t *testing.T, name, system string, principal decimal.Decimal, termMonths int, start time.Time) *domain.Financing {
	t.Helper()
	installments, err := Generate(system, principal, dec(12), termMonths, start)
	require.NoError(t, err)
	return &domain.Financing{
		ID:           uuid.New(),
		Name:         name,
		LoanType:     domain.LoanTypeOther,
		Principal:    principal,
		AnnualRate:   dec(12),
		TermMonths:   termMonths,
		System:       system,
		StartDate:    start,
		Installments: installments,
	}
}

func TestSummarize(t *testing.T) {
	f := buildFinancing(t, "car", domain.SystemPrice, dec(1000), 12, testStart)
	f.Installments[0].Status = domain.StatusPaid
	f.Installments[1].Status = domain.StatusPaid
	f.Installments[2].Status = domain.StatusOverdue

	s := Summarize(f.Installments, f.Principal)

	assert.Equal(t, 12, s.TotalInstallments)
	assert.Equal(t, 2, s.PaidCount)
	assert.Equal(t, 1, s.OverdueCount)
	assert.Equal(t, 9, s.PendingCount)
	assert.True(t, s.ProgressPercent.Equal(dec(16.67)), "got %s", s.ProgressPercent)

	// Remaining balance is outstanding principal before the next unpaid
	// installment: its post-payment balance plus its own principal share.
	next := f.Installments[2]
	expected := next.Balance.Add(next.PrincipalComponent)
	assert.True(t, s.RemainingBalance.Equal(expected), "got %s", s.RemainingBalance)

	withinCents(t, dec(88.85).Mul(decimal.NewFromInt(2)), s.PaidAmount)
}

func TestSummarizeFullyPaid(t *testing.T) {
	f := buildFinancing(t, "done", domain.SystemSAC, dec(1000), 6, testStart)
	for _, inst := range f.Installments {
		inst.Status = domain.StatusPaid
	}

	s := Summarize(f.Installments, f.Principal)

	assert.Equal(t, 6, s.PaidCount)
	assert.True(t, s.ProgressPercent.Equal(dec(100)))
	assert.True(t, s.RemainingBalance.IsZero())
}

func TestUpcomingInstallments(t *testing.T) {
	early := buildFinancing(t, "early", domain.SystemPrice, dec(1000), 3,
		time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC))
	late := buildFinancing(t, "late", domain.SystemSAC, dec(2000), 3,
		time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC))
	early.Installments[0].Status = domain.StatusPaid

	refs := UpcomingInstallments([]*domain.Financing{early, late}, 3)
	require.Len(t, refs, 3)

	assert.Equal(t, "late", refs[0].FinancingName)
	assert.Equal(t, 1, refs[0].Installment.Number)
	assert.Equal(t, "early", refs[1].FinancingName)
	assert.Equal(t, 2, refs[1].Installment.Number)
	assert.Equal(t, "late", refs[2].FinancingName)

	for i := 1; i < len(refs); i++ {
		assert.False(t, refs[i].Installment.DueDate.Before(refs[i-1].Installment.DueDate))
	}
}

func TestUpcomingInstallmentsTieKeepsInsertionOrder(t *testing.T) {
	start := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	a := buildFinancing(t, "first", domain.SystemPrice, dec(1000), 2, start)
	b := buildFinancing(t, "second", domain.SystemPrice, dec(1000), 2, start)

	refs := UpcomingInstallments([]*domain.Financing{a, b}, 2)
	require.Len(t, refs, 2)
	assert.Equal(t, "first", refs[0].FinancingName)
	assert.Equal(t, "second", refs[1].FinancingName)
}

func TestOverdueCount(t *testing.T) {
	a := buildFinancing(t, "a", domain.SystemPrice, dec(1000), 4, testStart)
	b := buildFinancing(t, "b", domain.SystemSAC, dec(1000), 4, testStart)
	a.Installments[0].Status = domain.StatusOverdue
	a.Installments[1].Status = domain.StatusOverdue
	b.Installments[0].Status = domain.StatusPaid

	assert.Equal(t, 2, OverdueCount([]*domain.Financing{a, b}))
	assert.Equal(t, 0, OverdueCount(nil))
}
