// Package simulation projects "what-if" refinancing scenarios against a
// financing without mutating it. Committing a projection is the ledger's
// job; everything here is side-effect free.
package simulation

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/financing-engine/internal/domain"
	"github.com/segyhp/financing-engine/internal/schedule"
	pkgerrors "github.com/segyhp/financing-engine/pkg/errors"
)

// Simulate projects the effect of an extra payment under the given
// strategy, anchoring the new sub-schedule at today. It returns (nil, nil)
// when the financing has no pending installments; only a committing caller
// treats that as an error.
func Simulate(f *domain.Financing, extraAmount decimal.Decimal, strategy string, today time.Time) (*domain.SimulationResult, error) {
	if !domain.ValidStrategy(strategy) {
		return nil, pkgerrors.WrapValidation("strategy", "must be reduce_term or reduce_payment")
	}
	if !extraAmount.IsPositive() {
		return nil, pkgerrors.WrapValidation("amount", "must be positive")
	}

	pending := pendingInstallments(f.Installments)
	if len(pending) == 0 {
		return nil, nil
	}

	currentBalance := f.Principal
	for _, inst := range f.Installments {
		if inst.Paid() {
			currentBalance = inst.Balance
		}
	}

	newBalance := currentBalance.Sub(extraAmount)
	if !newBalance.IsPositive() {
		// Full payoff: no schedule left, all pending interest is saved.
		return &domain.SimulationResult{
			Strategy:        strategy,
			NewInstallments: []*domain.Installment{},
			NewTerm:         0,
			Savings: domain.Savings{
				Interest: sumInterest(pending),
				Months:   len(pending),
			},
			NewBalance: decimal.Zero,
		}, nil
	}

	newTerm := len(pending)
	if strategy == domain.StrategyReduceTerm {
		newTerm = reducedTerm(f, pending, newBalance)
	}

	newInstallments, err := schedule.Generate(f.System, newBalance, f.AnnualRate, newTerm, today)
	if err != nil {
		return nil, err
	}

	return &domain.SimulationResult{
		Strategy:        strategy,
		NewInstallments: newInstallments,
		NewTerm:         len(newInstallments),
		Savings: domain.Savings{
			Interest: sumInterest(pending).Sub(sumInterest(newInstallments)),
			Months:   len(pending) - len(newInstallments),
		},
		NewBalance: newBalance,
	}, nil
}

// reducedTerm computes how many periods the new balance needs when the
// current per-period commitment is held constant.
func reducedTerm(f *domain.Financing, pending []*domain.Installment, newBalance decimal.Decimal) int {
	if f.System == domain.SystemSAC {
		// Hold the constant principal component fixed.
		amortization := pending[0].PrincipalComponent
		if !amortization.IsPositive() {
			return len(pending)
		}
		return int(newBalance.Div(amortization).Ceil().IntPart())
	}

	// PRICE: hold the payment fixed and solve the annuity term closed form,
	// n = -ln(1 - B*r/PMT) / ln(1+r), rounded up to a whole period.
	pmt := pending[0].Payment
	r := f.MonthlyRate()
	if r.IsZero() {
		return int(newBalance.Div(pmt).Ceil().IntPart())
	}
	if newBalance.Mul(r).GreaterThanOrEqual(pmt) {
		// The held payment cannot amortize this balance; keep the term and
		// let the payment drop instead.
		return len(pending)
	}

	ratio := newBalance.Mul(r).Div(pmt).InexactFloat64()
	rate := r.InexactFloat64()
	n := -math.Log(1-ratio) / math.Log(1+rate)
	return int(math.Ceil(n))
}

// Compare runs both strategies over the same inputs and presents them next
// to the unchanged current projection. No additional computation happens
// here.
func Compare(f *domain.Financing, extraAmount decimal.Decimal, today time.Time) (*domain.ScenarioComparison, error) {
	reduceTerm, err := Simulate(f, extraAmount, domain.StrategyReduceTerm, today)
	if err != nil {
		return nil, err
	}
	reducePayment, err := Simulate(f, extraAmount, domain.StrategyReducePayment, today)
	if err != nil {
		return nil, err
	}

	pending := pendingInstallments(f.Installments)
	return &domain.ScenarioComparison{
		Current: domain.CurrentProjection{
			PendingInstallments: pending,
			RemainingTerm:       len(pending),
			TotalInterest:       sumInterest(pending),
		},
		ReduceTerm: reduceTerm,
		ReducePay:  reducePayment,
	}, nil
}

func pendingInstallments(installments []*domain.Installment) []*domain.Installment {
	pending := make([]*domain.Installment, 0, len(installments))
	for _, inst := range installments {
		if !inst.Paid() {
			pending = append(pending, inst)
		}
	}
	return pending
}

func sumInterest(installments []*domain.Installment) decimal.Decimal {
	total := decimal.Zero
	for _, inst := range installments {
		total = total.Add(inst.InterestComponent)
	}
	return total
}
