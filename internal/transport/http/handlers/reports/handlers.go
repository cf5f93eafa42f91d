package reportshandler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"erphrm/internal/domain/auth"
	"erphrm/internal/domain/reports"
	"erphrm/internal/transport/http/api"
	"erphrm/internal/transport/http/middleware"
)

type Handler struct {
	Store *reports.Store
}

func NewHandler(store *reports.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequireRole(auth.HRReadRoles...)

	r.Route("/reports", func(r chi.Router) {
		r.With(read).Get("/overview", h.handleOverview)
		r.With(read).Get("/recent-employees", h.handleRecentEmployees)
	})
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.Store.Overview(r.Context())
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, overview, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRecentEmployees(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recent, err := h.Store.RecentEmployees(r.Context(), limit)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, recent, middleware.GetRequestID(r.Context()))
}
