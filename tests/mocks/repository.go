package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/segyhp/financing-engine/internal/domain"
	"github.com/segyhp/financing-engine/internal/repository"
)

type MockFinancingStore struct {
	mock.Mock
}

func (m *MockFinancingStore) Load(ctx context.Context) ([]*domain.Financing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Financing), args.Error(1)
}

func (m *MockFinancingStore) Save(ctx context.Context, financings []*domain.Financing) error {
	args := m.Called(ctx, financings)
	return args.Error(0)
}

type MockExpenseLedger struct {
	mock.Mock
}

func (m *MockExpenseLedger) CreateExpense(ctx context.Context, entry repository.ExpenseEntry) (string, error) {
	args := m.Called(ctx, entry)
	return args.String(0), args.Error(1)
}

// FixedClock pins "today" for deterministic status refreshes and
// simulation anchoring in tests.
type FixedClock struct {
	Date time.Time
}

func (c FixedClock) Today() time.Time { return c.Date }
