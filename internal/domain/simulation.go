package domain

import "github.com/shopspring/decimal"

// Refinance strategies
const (
	StrategyReduceTerm    = "reduce_term"
	StrategyReducePayment = "reduce_payment"
)

// ValidStrategy reports whether s is a supported refinance strategy.
func ValidStrategy(s string) bool {
	return s == StrategyReduceTerm || s == StrategyReducePayment
}

// Savings quantifies what a refinance projection buys relative to the
// current pending schedule.
type Savings struct {
	Interest decimal.Decimal `json:"interest"`
	Months   int             `json:"months"`
}

// SimulationResult is the outcome of projecting an extra payment against a
// financing. NewInstallments is empty on full payoff.
type SimulationResult struct {
	Strategy        string          `json:"strategy"`
	NewInstallments []*Installment  `json:"new_installments"`
	NewTerm         int             `json:"new_term"`
	Savings         Savings         `json:"savings"`
	NewBalance      decimal.Decimal `json:"new_balance"`
}

// ScenarioComparison presents both strategies next to the unchanged
// current projection. Purely presentational; each leg is an independent
// simulation over the same inputs.
type ScenarioComparison struct {
	Current    CurrentProjection `json:"current"`
	ReduceTerm *SimulationResult `json:"reduce_term"`
	ReducePay  *SimulationResult `json:"reduce_payment"`
}

// CurrentProjection summarizes the pending schedule as it stands today.
type CurrentProjection struct {
	PendingInstallments []*Installment  `json:"pending_installments"`
	RemainingTerm       int             `json:"remaining_term"`
	TotalInterest       decimal.Decimal `json:"total_interest"`
}

// AmortizationResult is what a committed extra amortization reports back.
type AmortizationResult struct {
	NewTerm int     `json:"new_term"`
	Savings Savings `json:"savings"`

	// TransactionID is set when the commit also recorded an expense in the
	// surrounding tracker.
	TransactionID string `json:"transaction_id,omitempty"`
}
