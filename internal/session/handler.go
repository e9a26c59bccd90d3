package session

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
	State() State
	Stage(d Draft) State
	BeginEdit(id int64) (State, error)
	Cancel() State
	Reset() State
	Commit(ctx context.Context) (CommitResult, error)
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

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.Service.State())
}

func (h *Handler) StageDraft(w http.ResponseWriter, r *http.Request) {
	var d Draft
	if err := h.DecodeJSON(r, &d); err != nil {
		logger.From(r.Context()).Error("StageDraft: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.WriteJSON(w, http.StatusOK, h.Service.Stage(d))
}

func (h *Handler) BeginEdit(w http.ResponseWriter, r *http.Request) {
	id, err := transport.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid expense ID")
		return
	}

	state, err := h.Service.BeginEdit(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, state)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.Service.Cancel())
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.Service.Reset())
}

func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.Commit(r.Context())
	resp := CommitResponse{Session: result.State, Ledger: result.Ledger}

	switch {
	case err == nil:
		h.WriteJSON(w, http.StatusOK, resp)
	case errors.Is(err, internal.ErrPersistFailed):
		resp.Warning = err.Error()
		h.WriteJSON(w, http.StatusOK, resp)
	default:
		h.HandleServiceError(w, err)
	}
}
