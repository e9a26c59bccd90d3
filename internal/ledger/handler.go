package ledger

import (
	"context"
	"errors"
	"net/http"

	"github.com/frahmantamala/budget-story/internal"
	"github.com/frahmantamala/budget-story/internal/transport"
	"github.com/frahmantamala/budget-story/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Load(ctx context.Context) Ledger
	Current() Ledger
	SetIncome(ctx context.Context, income float64) (Ledger, error)
	AddExpense(ctx context.Context, name string, value float64, category string) (Ledger, error)
	UpdateExpense(ctx context.Context, id int64, name string, value float64, category string) (Ledger, error)
	DeleteExpense(ctx context.Context, id int64) (Ledger, error)
	ClearAll(ctx context.Context) (Ledger, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.Service.Current())
}

func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.Service.Load(r.Context()))
}

func (h *Handler) SetIncome(w http.ResponseWriter, r *http.Request) {
	var dto IncomeRequest
	if err := h.DecodeJSON(r, &dto); err != nil {
		logger.From(r.Context()).Error("SetIncome: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	l, err := h.Service.SetIncome(r.Context(), *dto.Income)
	h.writeMutation(w, http.StatusOK, l, err)
}

func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	var dto ExpenseRequest
	if err := h.DecodeJSON(r, &dto); err != nil {
		logger.From(r.Context()).Error("AddExpense: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	l, err := h.Service.AddExpense(r.Context(), dto.Name, *dto.Value, dto.Category)
	h.writeMutation(w, http.StatusCreated, l, err)
}

func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := transport.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid expense ID")
		return
	}

	var dto ExpenseRequest
	if err := h.DecodeJSON(r, &dto); err != nil {
		logger.From(r.Context()).Error("UpdateExpense: invalid request body", "error", err, "expense_id", id)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	l, err := h.Service.UpdateExpense(r.Context(), id, dto.Name, *dto.Value, dto.Category)
	h.writeMutation(w, http.StatusOK, l, err)
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := transport.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid expense ID")
		return
	}

	l, err := h.Service.DeleteExpense(r.Context(), id)
	h.writeMutation(w, http.StatusOK, l, err)
}

func (h *Handler) ClearAll(w http.ResponseWriter, r *http.Request) {
	l, err := h.Service.ClearAll(r.Context())
	h.writeMutation(w, http.StatusOK, l, err)
}

// writeMutation reports a persist failure as a warning on a successful
// response; any other error replaces the response.
func (h *Handler) writeMutation(w http.ResponseWriter, status int, l Ledger, err error) {
	if err == nil {
		h.WriteJSON(w, status, MutationResponse{Ledger: l})
		return
	}
	if errors.Is(err, internal.ErrPersistFailed) {
		h.Logger.Warn("ledger change not persisted", "error", err)
		h.WriteJSON(w, status, MutationResponse{Ledger: l, Warning: err.Error()})
		return
	}
	h.HandleServiceError(w, err)
}
