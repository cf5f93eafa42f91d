package leavehandler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"erphrm/internal/domain/auth"
	"erphrm/internal/domain/leave"
	"erphrm/internal/transport/http/api"
	"erphrm/internal/transport/http/middleware"
)

type Handler struct {
	Store *leave.Store
}

func NewHandler(store *leave.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequireRole(auth.HRReadRoles...)
	write := middleware.RequireRole(auth.HRWriteRoles...)

	r.Route("/leaves", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(read).Get("/{id}", h.handleGet)
		r.With(write).Post("/", h.handleCreate)
		r.With(write).Put("/{id}", h.handleUpdate)
		r.With(write).Post("/{id}/approve", h.handleApprove)
		r.With(write).Post("/{id}/reject", h.handleReject)
		r.With(write).Delete("/{id}", h.handleDelete)
		r.With(write).Post("/{id}/restore", h.handleRestore)
		r.With(write).Delete("/{id}/purge", h.handlePurge)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	include, _ := strconv.ParseBool(r.URL.Query().Get("includeDeleted"))
	requests, err := h.Store.List(r.Context(), include)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, requests, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Store.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	if detail == nil {
		api.Fail(w, http.StatusNotFound, "not_found", "leave request not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, detail, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload leave.Request
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
	var patch leave.Update
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	updated, err := h.Store.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	decided, err := h.Store.Approve(r.Context(), chi.URLParam(r, "id"), user.Username)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, decided, middleware.GetRequestID(r.Context()))
}

type rejectPayload struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload rejectPayload
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}
	decided, err := h.Store.Reject(r.Context(), chi.URLParam(r, "id"), user.Username, payload.Reason)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, decided, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.SoftDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	restored, err := h.Store.Restore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, restored, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePurge(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.HardDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "purged"}, middleware.GetRequestID(r.Context()))
}
