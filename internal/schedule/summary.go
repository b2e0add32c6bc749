package schedule

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/segyhp/financing-engine/internal/domain"
	"github.com/segyhp/financing-engine/pkg/utils"
)

// Summary is the rollup of one financing's schedule.
type Summary struct {
	TotalInstallments int             `json:"total_installments"`
	PaidCount         int             `json:"paid_count"`
	PendingCount      int             `json:"pending_count"`
	OverdueCount      int             `json:"overdue_count"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	PendingAmount     decimal.Decimal `json:"pending_amount"`
	OverdueAmount     decimal.Decimal `json:"overdue_amount"`
	ProgressPercent   decimal.Decimal `json:"progress_percent"`
	RemainingBalance  decimal.Decimal `json:"remaining_balance"`
}

// Summarize derives the totals, progress and remaining balance of a
// schedule. The remaining balance is the outstanding principal before the
// next unpaid installment, or zero when everything is paid.
func Summarize(installments []*domain.Installment, principal decimal.Decimal) Summary {
	s := Summary{
		TotalInstallments: len(installments),
		PaidAmount:        decimal.Zero,
		PendingAmount:     decimal.Zero,
		OverdueAmount:     decimal.Zero,
		ProgressPercent:   decimal.Zero,
		RemainingBalance:  decimal.Zero,
	}

	var nextUnpaid *domain.Installment
	for _, inst := range installments {
		switch inst.Status {
		case domain.StatusPaid:
			s.PaidCount++
			s.PaidAmount = s.PaidAmount.Add(inst.Payment)
		case domain.StatusOverdue:
			s.OverdueCount++
			s.OverdueAmount = s.OverdueAmount.Add(inst.Payment)
		default:
			s.PendingCount++
			s.PendingAmount = s.PendingAmount.Add(inst.Payment)
		}
		if nextUnpaid == nil && !inst.Paid() {
			nextUnpaid = inst
		}
	}

	if s.TotalInstallments > 0 {
		s.ProgressPercent = utils.Round2(
			decimal.NewFromInt(int64(s.PaidCount)).
				Mul(decimal.NewFromInt(100)).
				Div(decimal.NewFromInt(int64(s.TotalInstallments))))
	}

	if nextUnpaid != nil {
		s.RemainingBalance = nextUnpaid.Balance.Add(nextUnpaid.PrincipalComponent)
	}

	return s
}

// UpcomingInstallments merges the non-paid installments of every financing,
// sorted by due date ascending and truncated to count. Ties keep insertion
// order.
func UpcomingInstallments(financings []*domain.Financing, count int) []domain.InstallmentRef {
	refs := make([]domain.InstallmentRef, 0)
	for _, f := range financings {
		for _, inst := range f.Installments {
			if inst.Paid() {
				continue
			}
			refs = append(refs, domain.InstallmentRef{
				FinancingID:   f.ID.String(),
				FinancingName: f.Name,
				Installment:   inst,
			})
		}
	}

	sort.SliceStable(refs, func(i, j int) bool {
		return utils.DateBefore(refs[i].Installment.DueDate, refs[j].Installment.DueDate)
	})

	if count >= 0 && len(refs) > count {
		refs = refs[:count]
	}
	return refs
}

// OverdueCount counts the overdue installments across all financings.
func OverdueCount(financings []*domain.Financing) int {
	count := 0
	for _, f := range financings {
		for _, inst := range f.Installments {
			if inst.Status == domain.StatusOverdue {
				count++
			}
		}
	}
	return count
}
