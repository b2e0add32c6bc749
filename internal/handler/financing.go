package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/segyhp/financing-engine/internal/domain"
	"github.com/segyhp/financing-engine/internal/service"
	pkgerrors "github.com/segyhp/financing-engine/pkg/errors"
	"github.com/segyhp/financing-engine/pkg/response"
)

type FinancingHandler struct {
	service   *service.FinancingService
	validator *validator.Validate
}

func NewFinancingHandler(svc *service.FinancingService) *FinancingHandler {
	return &FinancingHandler{
		service:   svc,
		validator: validator.New(),
	}
}

// RegisterRoutes mounts every financing endpoint on the router.
func (h *FinancingHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/financings", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/financings", h.List).Methods(http.MethodGet)
	r.HandleFunc("/financings/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/financings/{id}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/financings/{id}", h.Delete).Methods(http.MethodDelete)
	r.HandleFunc("/financings/{id}/summary", h.Summary).Methods(http.MethodGet)
	r.HandleFunc("/financings/{id}/installments/paid", h.MarkPaid).Methods(http.MethodPost)
	r.HandleFunc("/financings/{id}/simulations", h.Simulate).Methods(http.MethodPost)
	r.HandleFunc("/financings/{id}/simulations/compare", h.Compare).Methods(http.MethodPost)
	r.HandleFunc("/financings/{id}/amortizations", h.ApplyAmortization).Methods(http.MethodPost)
	r.HandleFunc("/installments/upcoming", h.Upcoming).Methods(http.MethodGet)
	r.HandleFunc("/installments/overdue-count", h.OverdueCount).Methods(http.MethodGet)
}

func (h *FinancingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateFinancingRequest
	if !h.decode(w, r, &req) {
		return
	}

	financing, err := h.service.AddFinancing(r.Context(), &req)
	if err != nil {
		writeBusinessError(w, err)
		return
	}
	response.Created(w, financing)
}

func (h *FinancingHandler) List(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.service.ListFinancings())
}

func (h *FinancingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	financing, found := h.service.GetFinancing(id)
	if !found {
		response.NotFound(w, "financing not found")
		return
	}
	response.Success(w, financing)
}

func (h *FinancingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req domain.UpdateFinancingRequest
	if !h.decode(w, r, &req) {
		return
	}

	found, err := h.service.UpdateFinancing(r.Context(), id, &req)
	if err != nil {
		writeBusinessError(w, err)
		return
	}
	if !found {
		response.NotFound(w, "financing not found")
		return
	}
	financing, _ := h.service.GetFinancing(id)
	response.Success(w, financing)
}

func (h *FinancingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	found, err := h.service.DeleteFinancing(r.Context(), id)
	if err != nil {
		writeBusinessError(w, err)
		return
	}
	if !found {
		response.NotFound(w, "financing not found")
		return
	}
	response.Success(w, map[string]string{"id": id})
}

func (h *FinancingHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	summary, found := h.service.Summary(id)
	if !found {
		response.NotFound(w, "financing not found")
		return
	}
	response.Success(w, summary)
}

func (h *FinancingHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req domain.MarkPaidRequest
	if !h.decode(w, r, &req) {
		return
	}

	found, err := h.service.MarkInstallmentPaid(r.Context(), id, &req)
	if err != nil {
		writeBusinessError(w, err)
		return
	}
	if !found {
		response.NotFound(w, "financing or installment not found")
		return
	}
	financing, _ := h.service.GetFinancing(id)
	response.Success(w, financing)
}

func (h *FinancingHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req domain.AmortizationRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, found, err := h.service.Simulate(id, req.Amount, req.Strategy)
	if err != nil {
		writeBusinessError(w, err)
		return
	}
	if !found {
		response.NotFound(w, "financing not found")
		return
	}
	if result == nil {
		response.UnprocessableEntity(w, "no pending installments to simulate", pkgerrors.ErrNoPendingInstallments)
		return
	}
	response.Success(w, result)
}

func (h *FinancingHandler) Compare(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body domain.AmortizationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	comparison, found, err := h.service.CompareScenarios(id, body.Amount)
	if err != nil {
		writeBusinessError(w, err)
		return
	}
	if !found {
		response.NotFound(w, "financing not found")
		return
	}
	response.Success(w, comparison)
}

func (h *FinancingHandler) ApplyAmortization(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req domain.AmortizationRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, found, err := h.service.ApplyExtraAmortization(r.Context(), id, &req)
	if err != nil {
		writeBusinessError(w, err)
		return
	}
	if !found {
		response.NotFound(w, "financing not found")
		return
	}
	response.Success(w, result)
}

func (h *FinancingHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	count := 5
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.BadRequest(w, "count must be a non-negative integer", err)
			return
		}
		count = parsed
	}
	response.Success(w, h.service.Upcoming(count))
}

func (h *FinancingHandler) OverdueCount(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]int{"overdue_count": h.service.OverdueCount()})
}

// decode unmarshals and validates a request body, writing the 400 itself
// when either step fails.
func (h *FinancingHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		response.BadRequest(w, "request validation failed", err)
		return false
	}
	return true
}

// writeBusinessError maps the error taxonomy to HTTP statuses: validation
// to 400, domain rules to 422, persistence and everything else to 500.
func writeBusinessError(w http.ResponseWriter, err error) {
	switch {
	case pkgerrors.IsValidation(err):
		response.BadRequest(w, "validation failed", err)
	case isDomainError(err):
		response.UnprocessableEntity(w, "operation not applicable", err)
	default:
		response.InternalServerError(w, "operation failed", err)
	}
}

func isDomainError(err error) bool {
	var bizErr *pkgerrors.BusinessError
	if !errors.As(err, &bizErr) {
		return false
	}
	return bizErr.Code == pkgerrors.ErrCodeUnsupportedSystem ||
		bizErr.Code == pkgerrors.ErrCodeNoPendingInstallments
}
