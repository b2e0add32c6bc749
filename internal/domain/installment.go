package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Installment lifecycle states. Paid is terminal; pending and overdue
// flip back and forth as the current date moves past the due date.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusOverdue = "overdue"
)

// Installment represents one scheduled payment of a financing.
type Installment struct {
	Number             int             `json:"number"`
	DueDate            time.Time       `json:"due_date"`
	PrincipalComponent decimal.Decimal `json:"principal_component"`
	InterestComponent  decimal.Decimal `json:"interest_component"`
	Payment            decimal.Decimal `json:"payment"`
	Balance            decimal.Decimal `json:"balance"`
	Status             string          `json:"status"`
	PaidDate           *time.Time      `json:"paid_date,omitempty"`

	// LinkedTransactionID points at the expense-tracker transaction created
	// when the installment was paid. Lookup key only, never dereferenced here.
	LinkedTransactionID string `json:"linked_transaction_id,omitempty"`
}

// Paid reports whether the installment reached its terminal state.
func (i *Installment) Paid() bool {
	return i.Status == StatusPaid
}

type InstallmentRef struct {
	FinancingID   string       `json:"financing_id"`
	FinancingName string       `json:"financing_name"`
	Installment   *Installment `json:"installment"`
}
