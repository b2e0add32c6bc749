// Package schedule holds the pure installment-schedule computations: the
// generators for both amortization systems, the status refresher, and the
// rollup aggregations. Nothing in this package performs I/O.
package schedule

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/financing-engine/internal/domain"
	pkgerrors "github.com/segyhp/financing-engine/pkg/errors"
	"github.com/segyhp/financing-engine/pkg/utils"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// MonthlyRate converts a nominal annual percentage (12 means 12%/year) to
// the monthly rate both generators iterate with.
func MonthlyRate(annualRate decimal.Decimal) decimal.Decimal {
	return annualRate.Div(hundred).Div(twelve)
}

// Generate produces a full installment schedule for the given amortization
// system. Every installment starts out pending with no paid date and no
// linked transaction. The running balance is carried at full precision;
// only the stored monetary fields are rounded to 2 decimals.
func Generate(system string, principal, annualRate decimal.Decimal, termMonths int, startDate time.Time) ([]*domain.Installment, error) {
	switch system {
	case domain.SystemPrice:
		return generatePrice(principal, annualRate, termMonths, startDate), nil
	case domain.SystemSAC:
		return generateSAC(principal, annualRate, termMonths, startDate), nil
	default:
		return nil, pkgerrors.WrapUnsupportedSystem(system)
	}
}

// generatePrice builds a fixed-payment (annuity) schedule:
//
//	PMT = P * r * (1+r)^n / ((1+r)^n - 1)
//
// with PMT = P/n when the rate is zero.
func generatePrice(principal, annualRate decimal.Decimal, termMonths int, startDate time.Time) []*domain.Installment {
	r := MonthlyRate(annualRate)
	n := decimal.NewFromInt(int64(termMonths))

	var pmt decimal.Decimal
	if r.IsZero() {
		pmt = principal.Div(n)
	} else {
		factor := one.Add(r).Pow(n)
		pmt = principal.Mul(r).Mul(factor).Div(factor.Sub(one))
	}

	installments := make([]*domain.Installment, 0, termMonths)
	balance := principal

	for i := 1; i <= termMonths; i++ {
		interest := balance.Mul(r)
		principalComponent := pmt.Sub(interest)
		balance = balance.Sub(principalComponent)
		if balance.IsNegative() {
			balance = decimal.Zero
		}

		installments = append(installments, &domain.Installment{
			Number:             i,
			DueDate:            utils.AddMonths(startDate, i),
			PrincipalComponent: utils.Round2(principalComponent),
			InterestComponent:  utils.Round2(interest),
			Payment:            utils.Round2(pmt),
			Balance:            utils.Round2(balance),
			Status:             domain.StatusPending,
		})
	}

	return installments
}

// generateSAC builds a constant-amortization schedule: the principal
// component is P/n every period and the payment shrinks as interest decays.
func generateSAC(principal, annualRate decimal.Decimal, termMonths int, startDate time.Time) []*domain.Installment {
	r := MonthlyRate(annualRate)
	amortization := principal.Div(decimal.NewFromInt(int64(termMonths)))

	installments := make([]*domain.Installment, 0, termMonths)
	balance := principal

	for i := 1; i <= termMonths; i++ {
		interest := balance.Mul(r)
		payment := amortization.Add(interest)
		balance = balance.Sub(amortization)
		if balance.IsNegative() {
			balance = decimal.Zero
		}

		installments = append(installments, &domain.Installment{
			Number:             i,
			DueDate:            utils.AddMonths(startDate, i),
			PrincipalComponent: utils.Round2(amortization),
			InterestComponent:  utils.Round2(interest),
			Payment:            utils.Round2(payment),
			Balance:            utils.Round2(balance),
			Status:             domain.StatusPending,
		})
	}

	return installments
}
