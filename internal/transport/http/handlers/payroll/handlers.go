package payrollhandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"erphrm/internal/domain/auth"
	"erphrm/internal/domain/payroll"
	"erphrm/internal/transport/http/api"
	"erphrm/internal/transport/http/middleware"
)

type Handler struct {
	Store *payroll.Store
}

func NewHandler(store *payroll.Store) *Handler {
	return &Handler{Store: store}
}

// Payroll is run by HR and finance; admins retain full access.
func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequireRole(auth.RoleAdmin, auth.RoleHRManager, auth.RoleFinance)
	write := middleware.RequireRole(auth.RoleAdmin, auth.RoleHRManager, auth.RoleFinance)

	r.Route("/payrolls", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(read).Get("/{period}", h.handleGet)
		r.With(write).Post("/{period}/generate", h.handleGenerate)
		r.With(write).Put("/{period}/items", h.handleUpdateItems)
		r.With(write).Post("/{period}/approve", h.handleApprove)
		r.With(write).Post("/{period}/close", h.handleClose)
		r.With(write).Delete("/{period}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	periods, err := h.Store.List(r.Context())
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, periods, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	period, err := h.Store.GetByPeriod(r.Context(), chi.URLParam(r, "period"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	if period == nil {
		api.Fail(w, http.StatusNotFound, "not_found", "payroll period not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, period, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	created, err := h.Store.Generate(r.Context(), chi.URLParam(r, "period"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

type updateItemsPayload struct {
	Items []payroll.LinePatch `json:"items"`
}

func (h *Handler) handleUpdateItems(w http.ResponseWriter, r *http.Request) {
	var payload updateItemsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	updated, err := h.Store.UpdateItems(r.Context(), chi.URLParam(r, "period"), payload.Items)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	approved, err := h.Store.Approve(r.Context(), chi.URLParam(r, "period"), user.Username)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, approved, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	closed, err := h.Store.Close(r.Context(), chi.URLParam(r, "period"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, closed, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Delete(r.Context(), chi.URLParam(r, "period")); err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}
