package summary

import (
	"net/http"

	"github.com/frahmantamala/budget-story/internal/ledger"
	"github.com/frahmantamala/budget-story/internal/transport"
)

type LedgerReader interface {
	Current() ledger.Ledger
}

type Handler struct {
	*transport.BaseHandler
	Ledger LedgerReader
}

func NewHandler(baseHandler *transport.BaseHandler, l LedgerReader) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Ledger:      l,
	}
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, Compute(h.Ledger.Current()))
}
