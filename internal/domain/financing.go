package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanTypeHouse   = "house"
	LoanTypeVehicle = "vehicle"
	LoanTypeOther   = "other"
)

// Amortization systems
const (
	SystemPrice = "PRICE"
	SystemSAC   = "SAC"
)

// Financing represents one amortized loan contract together with its
// full installment schedule.
type Financing struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	LoanType   string          `json:"loan_type" db:"loan_type"`
	Principal  decimal.Decimal `json:"principal" db:"principal"`
	AnnualRate decimal.Decimal `json:"annual_rate" db:"annual_rate"`
	TermMonths int             `json:"term_months" db:"term_months"`
	System     string          `json:"system" db:"system"`
	StartDate  time.Time       `json:"start_date" db:"start_date"`

	Installments []*Installment `json:"installments"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Clone returns a deep copy of the financing and its installments, safe to
// hand to callers that read it after the owner's lock is released.
func (f *Financing) Clone() *Financing {
	out := *f
	out.Installments = make([]*Installment, len(f.Installments))
	for i, inst := range f.Installments {
		c := *inst
		if inst.PaidDate != nil {
			paid := *inst.PaidDate
			c.PaidDate = &paid
		}
		out.Installments[i] = &c
	}
	return &out
}

// MonthlyRate derives the nominal monthly rate from the stored annual
// percentage (12 means 12%/year).
func (f *Financing) MonthlyRate() decimal.Decimal {
	return f.AnnualRate.Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(12))
}

// ValidLoanType reports whether t is one of the supported loan types.
func ValidLoanType(t string) bool {
	return t == LoanTypeHouse || t == LoanTypeVehicle || t == LoanTypeOther
}

// ValidSystem reports whether s is one of the supported amortization systems.
func ValidSystem(s string) bool {
	return s == SystemPrice || s == SystemSAC
}

// DTOs for requests and responses

type CreateFinancingRequest struct {
	Name                    string          `json:"name" validate:"required"`
	LoanType                string          `json:"loan_type" validate:"required,oneof=house vehicle other"`
	Principal               decimal.Decimal `json:"principal" validate:"required"`
	AnnualRate              decimal.Decimal `json:"annual_rate" validate:"required"`
	TermMonths              int             `json:"term_months" validate:"required,gt=0"`
	System                  string          `json:"system" validate:"required,oneof=PRICE SAC"`
	StartDate               string          `json:"start_date" validate:"required,datetime=2006-01-02"`
	PaidInstallments        int             `json:"paid_installments" validate:"gte=0"`
	AnticipatedInstallments int             `json:"anticipated_installments" validate:"gte=0"`
}

type UpdateFinancingRequest struct {
	Name       *string          `json:"name,omitempty"`
	LoanType   *string          `json:"loan_type,omitempty" validate:"omitempty,oneof=house vehicle other"`
	Principal  *decimal.Decimal `json:"principal,omitempty"`
	AnnualRate *decimal.Decimal `json:"annual_rate,omitempty"`
	TermMonths *int             `json:"term_months,omitempty" validate:"omitempty,gt=0"`
	System     *string          `json:"system,omitempty" validate:"omitempty,oneof=PRICE SAC"`
	StartDate  *string          `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// TouchesSchedule reports whether the update changes a field the whole
// schedule is derived from. Such updates force a regeneration.
func (r *UpdateFinancingRequest) TouchesSchedule() bool {
	return r.Principal != nil || r.AnnualRate != nil || r.TermMonths != nil ||
		r.System != nil || r.StartDate != nil
}

type MarkPaidRequest struct {
	Number   int    `json:"number" validate:"required,gt=0"`
	PaidDate string `json:"paid_date,omitempty" validate:"omitempty,datetime=2006-01-02"`

	// TransactionID links an already-existing tracker transaction. When
	// empty and RecordExpense is set, a new one is created instead.
	TransactionID string `json:"transaction_id,omitempty"`
	RecordExpense bool   `json:"record_expense"`
}

type AmortizationRequest struct {
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Strategy      string          `json:"strategy" validate:"required,oneof=reduce_term reduce_payment"`
	RecordExpense bool            `json:"record_expense"`
}
