package rest

import (
	"net/http"

	"github.com/frahmantamala/budget-story/internal/ledger"
	"github.com/frahmantamala/budget-story/internal/session"
	"github.com/frahmantamala/budget-story/internal/summary"
	"github.com/frahmantamala/budget-story/internal/transport"
	"github.com/frahmantamala/budget-story/internal/trend"
)

type LedgerReader interface {
	Current() ledger.Ledger
}

type TrendReader interface {
	Series() []trend.Point
}

type SessionReader interface {
	State() session.State
}

// DashboardResponse is everything a UI needs to render one screen.
type DashboardResponse struct {
	Ledger  ledger.Ledger   `json:"ledger"`
	Summary summary.Summary `json:"summary"`
	Trend   []trend.Point   `json:"trend"`
	Session session.State   `json:"session"`
	Theme   string          `json:"theme"`
}

type DashboardHandler struct {
	*transport.BaseHandler
	ledger  LedgerReader
	trend   TrendReader
	session SessionReader
	theme   string
}

func NewDashboardHandler(baseHandler *transport.BaseHandler, l LedgerReader, t TrendReader, s SessionReader, theme string) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: baseHandler,
		ledger:      l,
		trend:       t,
		session:     s,
		theme:       theme,
	}
}

func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	current := h.ledger.Current()
	h.WriteJSON(w, http.StatusOK, DashboardResponse{
		Ledger:  current,
		Summary: summary.Compute(current),
		Trend:   h.trend.Series(),
		Session: h.session.State(),
		Theme:   h.theme,
	})
}
