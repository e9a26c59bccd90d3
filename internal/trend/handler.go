package trend

import (
	"net/http"

	"github.com/frahmantamala/budget-story/internal/transport"
)

type ServiceAPI interface {
	Series() []Point
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

type SeriesResponse struct {
	Points []Point `json:"points"`
}

func (h *Handler) GetTrend(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, SeriesResponse{Points: h.Service.Series()})
}
