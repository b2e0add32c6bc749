package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/financing-engine/internal/domain"
	"github.com/segyhp/financing-engine/internal/handler"
	"github.com/segyhp/financing-engine/internal/service"
	"github.com/segyhp/financing-engine/tests/mocks"
)

func setupRouter(t *testing.T) (*mux.Router, *service.FinancingService) {
	t.Helper()
	store := new(mocks.MockFinancingStore)
	store.On("Load", mock.Anything).Return([]*domain.Financing{}, nil)
	store.On("Save", mock.Anything, mock.Anything).Return(nil)

	clock := mocks.FixedClock{Date: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)}
	svc := service.NewFinancingService(store, nil, clock, nil)
	require.NoError(t, svc.Load(context.Background()))

	router := mux.NewRouter()
	handler.NewFinancingHandler(svc).RegisterRoutes(router)
	return router, svc
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func createPayload() map[string]interface{} {
	return map[string]interface{}{
		"name":        "Car",
		"loan_type":   "vehicle",
		"principal":   "35000",
		"annual_rate": "18.5",
		"term_months": 48,
		"system":      "PRICE",
		"start_date":  "2024-01-10",
	}
}

func TestCreateFinancingEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/financings", createPayload())
	assert.Equal(t, http.StatusCreated, rec.Code)

	var envelope struct {
		Success bool             `json:"success"`
		Data    domain.Financing `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "Car", envelope.Data.Name)
	assert.Len(t, envelope.Data.Installments, 48)
}

func TestCreateFinancingEndpointRejectsBadBody(t *testing.T) {
	router, _ := setupRouter(t)

	payload := createPayload()
	payload["system"] = "BALLOON"
	rec := doJSON(t, router, http.MethodPost, "/financings", payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	payload = createPayload()
	payload["term_months"] = 0
	rec = doJSON(t, router, http.MethodPost, "/financings", payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetFinancingEndpointNotFound(t *testing.T) {
	router, _ := setupRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/financings/missing-id", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSimulateEndpoint(t *testing.T) {
	router, svc := setupRouter(t)

	f, err := svc.AddFinancing(context.Background(), &domain.CreateFinancingRequest{
		Name:       "Sim",
		LoanType:   domain.LoanTypeOther,
		Principal:  decimalFromString(t, "1000"),
		AnnualRate: decimalFromString(t, "12"),
		TermMonths: 12,
		System:     domain.SystemPrice,
		StartDate:  "2024-01-15",
	})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPost, "/financings/"+f.ID.String()+"/simulations", map[string]interface{}{
		"amount":   "200",
		"strategy": "reduce_term",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data domain.SimulationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Less(t, envelope.Data.NewTerm, 12)
	assert.Positive(t, envelope.Data.Savings.Months)

	// Simulating never commits.
	stored, _ := svc.GetFinancing(f.ID.String())
	assert.Len(t, stored.Installments, 12)
}

func TestApplyAmortizationEndpointNoPending(t *testing.T) {
	router, svc := setupRouter(t)

	f, err := svc.AddFinancing(context.Background(), &domain.CreateFinancingRequest{
		Name:             "Paid off",
		LoanType:         domain.LoanTypeOther,
		Principal:        decimalFromString(t, "1000"),
		AnnualRate:       decimalFromString(t, "12"),
		TermMonths:       3,
		System:           domain.SystemSAC,
		StartDate:        "2024-01-15",
		PaidInstallments: 3,
	})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPost, "/financings/"+f.ID.String()+"/amortizations", map[string]interface{}{
		"amount":   "100",
		"strategy": "reduce_payment",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpcomingEndpoint(t *testing.T) {
	router, svc := setupRouter(t)

	_, err := svc.AddFinancing(context.Background(), &domain.CreateFinancingRequest{
		Name:       "Loan",
		LoanType:   domain.LoanTypeOther,
		Principal:  decimalFromString(t, "1200"),
		AnnualRate: decimalFromString(t, "10"),
		TermMonths: 12,
		System:     domain.SystemSAC,
		StartDate:  "2024-05-15",
	})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodGet, "/installments/upcoming?count=3", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data []domain.InstallmentRef `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 3)

	rec = doJSON(t, router, http.MethodGet, "/installments/upcoming?count=oops", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
