package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// postgresExpenseLedger writes expense transactions straight into the
// surrounding tracker's transactions table. The tracker shares the same
// database; this is its write surface, not ours, so only inserts happen.
type postgresExpenseLedger struct {
	db *sqlx.DB
}

func NewPostgresExpenseLedger(db *sqlx.DB) ExpenseLedger {
	return &postgresExpenseLedger{db: db}
}

func (l *postgresExpenseLedger) CreateExpense(ctx context.Context, entry ExpenseEntry) (string, error) {
	query := `
		INSERT INTO transactions (id, type, amount, category, description, date)
		VALUES ($1, 'expense', $2, $3, $4, $5)
	`

	id := uuid.New()
	_, err := l.db.ExecContext(ctx, query,
		id,
		entry.Amount,
		entry.Category,
		entry.Description,
		entry.Date,
	)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}
