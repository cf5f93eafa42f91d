package accounthandler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"erphrm/internal/domain/account"
	"erphrm/internal/domain/auth"
	"erphrm/internal/transport/http/api"
	"erphrm/internal/transport/http/middleware"
)

type Handler struct {
	Store *account.Store
}

func NewHandler(store *account.Store) *Handler {
	return &Handler{Store: store}
}

// Account administration is restricted to admins; HR managers may browse.
func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequireRole(auth.RoleAdmin, auth.RoleHRManager)
	write := middleware.RequireRole(auth.RoleAdmin)

	r.Route("/accounts", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(read).Get("/{username}", h.handleGet)
		r.With(write).Post("/", h.handleCreate)
		r.With(write).Put("/{username}", h.handleUpdate)
		r.With(write).Delete("/{username}", h.handleDelete)
		r.With(write).Post("/{username}/restore", h.handleRestore)
		r.With(write).Delete("/{username}/purge", h.handlePurge)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	include, _ := strconv.ParseBool(r.URL.Query().Get("includeDeleted"))
	accounts, err := h.Store.List(r.Context(), include)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, accounts, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Store.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	if detail == nil {
		api.Fail(w, http.StatusNotFound, "not_found", "account not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, detail, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload account.NewAccount
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	created, err := h.Store.Create(r.Context(), payload)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch account.Update
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	updated, err := h.Store.Update(r.Context(), chi.URLParam(r, "username"), patch)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.SoftDelete(r.Context(), chi.URLParam(r, "username")); err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	restored, err := h.Store.Restore(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, restored, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePurge(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.HardDelete(r.Context(), chi.URLParam(r, "username")); err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "purged"}, middleware.GetRequestID(r.Context()))
}
