package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/financing-engine/internal/domain"
	"github.com/segyhp/financing-engine/internal/repository"
	"github.com/segyhp/financing-engine/internal/schedule"
	"github.com/segyhp/financing-engine/internal/simulation"
	pkgerrors "github.com/segyhp/financing-engine/pkg/errors"
	"github.com/segyhp/financing-engine/pkg/utils"
)

// ExpenseCategory is the fixed category every installment payment lands
// under in the surrounding expense tracker.
const ExpenseCategory = "Financiamento"

// Clock supplies "today" for status refreshes and simulation anchoring.
// Injectable so tests can pin a date.
type Clock interface {
	Today() time.Time
}

type systemClock struct{}

func (systemClock) Today() time.Time { return time.Now() }

// SystemClock returns the wall-clock backed Clock.
func SystemClock() Clock { return systemClock{} }

// FinancingService owns the in-memory financing collection and is the only
// component that mutates it or talks to the store. Every operation is an
// atomic read-mutate-write-through unit; a failed write-through is reported
// but the in-memory change is not rolled back.
type FinancingService struct {
	mu     sync.Mutex
	store  repository.FinancingStore
	ledger repository.ExpenseLedger
	clock  Clock
	logger *slog.Logger

	financings []*domain.Financing
}

// NewFinancingService builds the service. ledger may be nil when the
// surrounding expense tracker is not wired in; every operation works
// without it.
func NewFinancingService(
	store repository.FinancingStore,
	ledger repository.ExpenseLedger,
	clock Clock,
	logger *slog.Logger,
) *FinancingService {
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FinancingService{
		store:  store,
		ledger: ledger,
		clock:  clock,
		logger: logger.With("component", "financing_service"),
	}
}

// Load pulls the stored collection into memory and refreshes installment
// statuses against today. Call once at startup.
func (s *FinancingService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	financings, err := s.store.Load(ctx)
	if err != nil {
		return pkgerrors.WrapPersistence(err)
	}
	schedule.RefreshAll(financings, s.clock.Today())
	s.financings = financings
	s.logger.Info("financings loaded", "count", len(financings))
	return nil
}

// ListFinancings returns detached copies of the collection with statuses
// refreshed; callers can encode them after the lock is gone.
func (s *FinancingService) ListFinancings() []*domain.Financing {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule.RefreshAll(s.financings, s.clock.Today())
	out := make([]*domain.Financing, len(s.financings))
	for i, f := range s.financings {
		out[i] = f.Clone()
	}
	return out
}

// GetFinancing returns a detached copy of one financing by id, statuses
// refreshed.
func (s *FinancingService) GetFinancing(id string) (*domain.Financing, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.find(id)
	if f == nil {
		return nil, false
	}
	schedule.Refresh(f.Installments, s.clock.Today())
	return f.Clone(), true
}

// AddFinancing validates the request, generates the full schedule, marks
// any pre-paid prefix, persists and returns the new record.
func (s *FinancingService) AddFinancing(ctx context.Context, req *domain.CreateFinancingRequest) (*domain.Financing, error) {
	startDate, err := validateCreate(req)
	if err != nil {
		return nil, err
	}

	installments, err := schedule.Generate(req.System, req.Principal, req.AnnualRate, req.TermMonths, startDate)
	if err != nil {
		return nil, err
	}

	// Installments already settled before the record entered the tracker
	// are marked paid up front, paid date pinned to the due date.
	prePaid := req.PaidInstallments + req.AnticipatedInstallments
	if prePaid > len(installments) {
		prePaid = len(installments)
	}
	for i := 0; i < prePaid; i++ {
		due := installments[i].DueDate
		installments[i].Status = domain.StatusPaid
		installments[i].PaidDate = &due
	}

	now := s.clock.Today()
	financing := &domain.Financing{
		ID:           uuid.New(),
		Name:         req.Name,
		LoanType:     req.LoanType,
		Principal:    req.Principal,
		AnnualRate:   req.AnnualRate,
		TermMonths:   req.TermMonths,
		System:       req.System,
		StartDate:    startDate,
		Installments: installments,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	schedule.Refresh(financing.Installments, s.clock.Today())
	s.financings = append(s.financings, financing)

	if err := s.persist(ctx); err != nil {
		return financing.Clone(), err
	}
	s.logger.Info("financing created", "id", financing.ID, "system", financing.System, "term_months", financing.TermMonths)
	return financing.Clone(), nil
}

// UpdateFinancing merges the changed fields into the record. When a field
// the schedule derives from changes, the whole schedule is regenerated and
// any paid/overdue history is discarded, matching the source behavior.
// Returns false when the id is unknown.
func (s *FinancingService) UpdateFinancing(ctx context.Context, id string, req *domain.UpdateFinancingRequest) (bool, error) {
	if err := validateUpdate(req); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.find(id)
	if f == nil {
		return false, nil
	}

	if req.TouchesSchedule() {
		// Stage the merged core terms first; the record is only touched
		// once the new schedule generated cleanly.
		principal := f.Principal
		annualRate := f.AnnualRate
		termMonths := f.TermMonths
		system := f.System
		startDate := f.StartDate
		if req.Principal != nil {
			principal = *req.Principal
		}
		if req.AnnualRate != nil {
			annualRate = *req.AnnualRate
		}
		if req.TermMonths != nil {
			termMonths = *req.TermMonths
		}
		if req.System != nil {
			system = *req.System
		}
		if req.StartDate != nil {
			startDate, _ = utils.ParseDate(*req.StartDate)
		}

		installments, err := schedule.Generate(system, principal, annualRate, termMonths, startDate)
		if err != nil {
			return true, err
		}
		f.Principal = principal
		f.AnnualRate = annualRate
		f.TermMonths = termMonths
		f.System = system
		f.StartDate = startDate
		f.Installments = installments
		schedule.Refresh(f.Installments, s.clock.Today())
	}

	if req.Name != nil {
		f.Name = *req.Name
	}
	if req.LoanType != nil {
		f.LoanType = *req.LoanType
	}

	f.UpdatedAt = s.clock.Today()
	if err := s.persist(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// DeleteFinancing removes the record. Returns false when the id is unknown.
func (s *FinancingService) DeleteFinancing(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, f := range s.financings {
		if f.ID.String() == id {
			s.financings = append(s.financings[:i], s.financings[i+1:]...)
			if err := s.persist(ctx); err != nil {
				return true, err
			}
			s.logger.Info("financing deleted", "id", id)
			return true, nil
		}
	}
	return false, nil
}

// MarkInstallmentPaid transitions one installment to paid, stamping the
// paid date (today when absent). When requested and an expense ledger is
// wired, a matching expense transaction is created and linked. Returns
// false when the financing or the installment number is unknown.
func (s *FinancingService) MarkInstallmentPaid(ctx context.Context, id string, req *domain.MarkPaidRequest) (bool, error) {
	paidDate := time.Time{}
	if req.PaidDate != "" {
		parsed, err := utils.ParseDate(req.PaidDate)
		if err != nil {
			return false, pkgerrors.WrapValidation("paid_date", "must be an ISO yyyy-mm-dd date")
		}
		paidDate = parsed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.find(id)
	if f == nil {
		return false, nil
	}

	var target *domain.Installment
	for _, inst := range f.Installments {
		if inst.Number == req.Number {
			target = inst
			break
		}
	}
	if target == nil {
		return false, nil
	}
	if target.Paid() {
		return true, nil
	}

	if paidDate.IsZero() {
		paidDate = utils.Truncate(s.clock.Today())
	}
	target.Status = domain.StatusPaid
	target.PaidDate = &paidDate

	if req.TransactionID != "" {
		target.LinkedTransactionID = req.TransactionID
	} else if req.RecordExpense && s.ledger != nil {
		txID, err := s.ledger.CreateExpense(ctx, repository.ExpenseEntry{
			Amount:      target.Payment,
			Category:    ExpenseCategory,
			Description: fmt.Sprintf("%s - installment %d/%d", f.Name, target.Number, f.TermMonths),
			Date:        paidDate,
		})
		if err != nil {
			// The expense record is a courtesy to the tracker; the payment
			// itself stands either way.
			s.logger.Warn("expense ledger call failed", "financing_id", id, "number", target.Number, "error", err)
		} else {
			target.LinkedTransactionID = txID
		}
	}

	f.UpdatedAt = s.clock.Today()
	if err := s.persist(ctx); err != nil {
		return true, err
	}
	s.logger.Info("installment paid", "financing_id", id, "number", target.Number)
	return true, nil
}

// Simulate projects an extra payment without touching stored state.
// The boolean is false when the financing id is unknown.
func (s *FinancingService) Simulate(id string, amount decimal.Decimal, strategy string) (*domain.SimulationResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.find(id)
	if f == nil {
		return nil, false, nil
	}
	schedule.Refresh(f.Installments, s.clock.Today())
	result, err := simulation.Simulate(f, amount, strategy, utils.Truncate(s.clock.Today()))
	return result, true, err
}

// CompareScenarios runs both strategies side by side with the unchanged
// current projection.
func (s *FinancingService) CompareScenarios(id string, amount decimal.Decimal) (*domain.ScenarioComparison, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.find(id)
	if f == nil {
		return nil, false, nil
	}
	schedule.Refresh(f.Installments, s.clock.Today())
	comparison, err := simulation.Compare(f, amount, utils.Truncate(s.clock.Today()))
	return comparison, true, err
}

// ApplyExtraAmortization commits a simulation: paid installments stay as
// immutable history, the unpaid tail is replaced by the projection,
// renumbered to continue after the last paid number. Returns found=false
// when the id is unknown, and a domain error when nothing is pending.
func (s *FinancingService) ApplyExtraAmortization(ctx context.Context, id string, req *domain.AmortizationRequest) (*domain.AmortizationResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.find(id)
	if f == nil {
		return nil, false, nil
	}

	today := utils.Truncate(s.clock.Today())
	schedule.Refresh(f.Installments, today)

	result, err := simulation.Simulate(f, req.Amount, req.Strategy, today)
	if err != nil {
		return nil, true, err
	}
	if result == nil {
		return nil, true, pkgerrors.WrapNoPendingInstallments(id)
	}

	paid := make([]*domain.Installment, 0, len(f.Installments))
	for _, inst := range f.Installments {
		if inst.Paid() {
			paid = append(paid, inst)
		}
	}

	// Explicit renumbering: the new tail continues the paid prefix.
	lastNumber := 0
	if len(paid) > 0 {
		lastNumber = paid[len(paid)-1].Number
	}
	for i, inst := range result.NewInstallments {
		inst.Number = lastNumber + i + 1
	}

	f.Installments = append(paid, result.NewInstallments...)
	f.TermMonths = len(f.Installments)
	f.UpdatedAt = s.clock.Today()

	txID := ""
	if req.RecordExpense && s.ledger != nil {
		txID, err = s.ledger.CreateExpense(ctx, repository.ExpenseEntry{
			Amount:      req.Amount,
			Category:    ExpenseCategory,
			Description: fmt.Sprintf("%s - extra amortization", f.Name),
			Date:        today,
		})
		if err != nil {
			s.logger.Warn("expense ledger call failed", "financing_id", id, "error", err)
			txID = ""
		}
	}

	if err := s.persist(ctx); err != nil {
		return nil, true, err
	}
	s.logger.Info("extra amortization applied",
		"financing_id", id,
		"strategy", req.Strategy,
		"new_term", result.NewTerm,
		"months_saved", result.Savings.Months,
	)

	return &domain.AmortizationResult{
		NewTerm:       result.NewTerm,
		Savings:       result.Savings,
		TransactionID: txID,
	}, true, nil
}

// Summary rolls up one financing's schedule.
func (s *FinancingService) Summary(id string) (schedule.Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.find(id)
	if f == nil {
		return schedule.Summary{}, false
	}
	schedule.Refresh(f.Installments, s.clock.Today())
	return schedule.Summarize(f.Installments, f.Principal), true
}

// Upcoming returns the next count unpaid installments across all
// financings, due-date ascending.
func (s *FinancingService) Upcoming(count int) []domain.InstallmentRef {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule.RefreshAll(s.financings, s.clock.Today())
	return schedule.UpcomingInstallments(s.financings, count)
}

// OverdueCount counts overdue installments across all financings.
func (s *FinancingService) OverdueCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule.RefreshAll(s.financings, s.clock.Today())
	return schedule.OverdueCount(s.financings)
}

// RefreshStatuses sweeps every schedule against today and writes the
// collection through. Returns the overdue count for reporting. Used by the
// scheduler daemon.
func (s *FinancingService) RefreshStatuses(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule.RefreshAll(s.financings, s.clock.Today())
	overdue := schedule.OverdueCount(s.financings)
	if err := s.persist(ctx); err != nil {
		return overdue, err
	}
	return overdue, nil
}

func (s *FinancingService) find(id string) *domain.Financing {
	for _, f := range s.financings {
		if f.ID.String() == id {
			return f
		}
	}
	return nil
}

// persist writes the whole collection through. The in-memory mutation that
// preceded a failure is kept; availability wins over store consistency here.
func (s *FinancingService) persist(ctx context.Context) error {
	if err := s.store.Save(ctx, s.financings); err != nil {
		s.logger.Error("write-through failed", "error", err)
		return pkgerrors.WrapPersistence(err)
	}
	return nil
}

func validateCreate(req *domain.CreateFinancingRequest) (time.Time, error) {
	if req.Name == "" {
		return time.Time{}, pkgerrors.WrapValidation("name", "must not be empty")
	}
	if !domain.ValidLoanType(req.LoanType) {
		return time.Time{}, pkgerrors.WrapValidation("loan_type", "must be house, vehicle or other")
	}
	if !req.Principal.IsPositive() {
		return time.Time{}, pkgerrors.WrapValidation("principal", "must be positive")
	}
	if !req.AnnualRate.IsPositive() {
		return time.Time{}, pkgerrors.WrapValidation("annual_rate", "must be positive")
	}
	if req.TermMonths <= 0 {
		return time.Time{}, pkgerrors.WrapValidation("term_months", "must be a positive integer")
	}
	if req.PaidInstallments < 0 || req.AnticipatedInstallments < 0 {
		return time.Time{}, pkgerrors.WrapValidation("paid_installments", "must not be negative")
	}
	startDate, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return time.Time{}, pkgerrors.WrapValidation("start_date", "must be an ISO yyyy-mm-dd date")
	}
	return startDate, nil
}

func validateUpdate(req *domain.UpdateFinancingRequest) error {
	if req.Name != nil && *req.Name == "" {
		return pkgerrors.WrapValidation("name", "must not be empty")
	}
	if req.LoanType != nil && !domain.ValidLoanType(*req.LoanType) {
		return pkgerrors.WrapValidation("loan_type", "must be house, vehicle or other")
	}
	if req.Principal != nil && !req.Principal.IsPositive() {
		return pkgerrors.WrapValidation("principal", "must be positive")
	}
	if req.AnnualRate != nil && !req.AnnualRate.IsPositive() {
		return pkgerrors.WrapValidation("annual_rate", "must be positive")
	}
	if req.TermMonths != nil && *req.TermMonths <= 0 {
		return pkgerrors.WrapValidation("term_months", "must be a positive integer")
	}
	if req.System != nil && !domain.ValidSystem(*req.System) {
		return pkgerrors.WrapValidation("system", "must be PRICE or SAC")
	}
	if req.StartDate != nil {
		if _, err := utils.ParseDate(*req.StartDate); err != nil {
			return pkgerrors.WrapValidation("start_date", "must be an ISO yyyy-mm-dd date")
		}
	}
	return nil
}
