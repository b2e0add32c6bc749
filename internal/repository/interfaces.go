package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/financing-engine/internal/domain"
)

// FinancingStore persists the whole financing collection under a fixed
// namespace. The source system treated storage as a key-value blob of the
// serialized records, so the contract stays load-all/save-all.
type FinancingStore interface {
	// Load retrieves every stored financing. An empty store yields an
	// empty slice, not an error.
	Load(ctx context.Context) ([]*domain.Financing, error)

	// Save writes the full collection back, replacing what was there.
	Save(ctx context.Context, financings []*domain.Financing) error
}

// ExpenseEntry is the record handed to the surrounding expense tracker
// when an installment payment should show up in its ledger.
type ExpenseEntry struct {
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Category    string          `json:"category" db:"category"`
	Description string          `json:"description" db:"description"`
	Date        time.Time       `json:"date" db:"date"`
}

// ExpenseLedger creates expense transactions in the surrounding tracker
// and returns the opaque transaction id to link back from an installment.
type ExpenseLedger interface {
	CreateExpense(ctx context.Context, entry ExpenseEntry) (string, error)
}
