package contracthandler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"erphrm/internal/domain/auth"
	"erphrm/internal/domain/contract"
	"erphrm/internal/transport/http/api"
	"erphrm/internal/transport/http/middleware"
)

type Handler struct {
	Store *contract.Store
}

func NewHandler(store *contract.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequireRole(auth.HRReadRoles...)
	write := middleware.RequireRole(auth.HRWriteRoles...)

	r.Route("/contracts", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(read).Get("/{code}", h.handleGet)
		r.With(write).Post("/", h.handleCreate)
		r.With(write).Put("/{code}", h.handleUpdate)
		r.With(write).Delete("/{code}", h.handleDelete)
		r.With(write).Post("/{code}/restore", h.handleRestore)
		r.With(write).Delete("/{code}/purge", h.handlePurge)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	include, _ := strconv.ParseBool(r.URL.Query().Get("includeDeleted"))
	contracts, err := h.Store.List(r.Context(), include)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, contracts, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Store.GetByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	if detail == nil {
		api.Fail(w, http.StatusNotFound, "not_found", "contract not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, detail, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload contract.Contract
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
	var patch contract.Update
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	updated, err := h.Store.Update(r.Context(), chi.URLParam(r, "code"), patch)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.SoftDelete(r.Context(), chi.URLParam(r, "code")); err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "terminated"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	restored, err := h.Store.Restore(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, restored, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePurge(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.HardDelete(r.Context(), chi.URLParam(r, "code")); err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "purged"}, middleware.GetRequestID(r.Context()))
}
