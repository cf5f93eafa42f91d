package benefithandler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"erphrm/internal/domain/auth"
	"erphrm/internal/domain/benefit"
	"erphrm/internal/transport/http/api"
	"erphrm/internal/transport/http/middleware"
)

type Handler struct {
	Store *benefit.Store
}

func NewHandler(store *benefit.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequireRole(auth.HRReadRoles...)
	write := middleware.RequireRole(auth.HRWriteRoles...)

	r.Route("/benefits", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)

		r.Route("/assignments", func(r chi.Router) {
			r.With(read).Get("/", h.handleListAssignments)
			r.With(read).Get("/{id}", h.handleGetAssignment)
			r.With(write).Post("/", h.handleAssign)
			r.With(write).Delete("/{id}", h.handleRevokeAssignment)
			r.With(write).Post("/{id}/restore", h.handleRestoreAssignment)
			r.With(write).Delete("/{id}/purge", h.handlePurgeAssignment)
		})

		r.With(read).Get("/{code}", h.handleGet)
		r.With(write).Put("/{code}", h.handleUpdate)
		r.With(write).Delete("/{code}", h.handleDelete)
		r.With(write).Post("/{code}/restore", h.handleRestore)
		r.With(write).Delete("/{code}/purge", h.handlePurge)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	include, _ := strconv.ParseBool(r.URL.Query().Get("includeDeleted"))
	benefits, err := h.Store.List(r.Context(), include)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, benefits, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	found, err := h.Store.GetByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	if found == nil {
		api.Fail(w, http.StatusNotFound, "not_found", "benefit not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, found, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload benefit.Benefit
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
	var patch benefit.Update
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
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
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

func (h *Handler) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	include, _ := strconv.ParseBool(r.URL.Query().Get("includeDeleted"))
	assignments, err := h.Store.ListAssignments(r.Context(), include)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, assignments, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetAssignment(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Store.GetAssignment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	if detail == nil {
		api.Fail(w, http.StatusNotFound, "not_found", "benefit assignment not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, detail, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	var payload benefit.Assignment
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	created, err := h.Store.Assign(r.Context(), payload)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRevokeAssignment(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.RevokeAssignment(r.Context(), chi.URLParam(r, "id")); err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "revoked"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRestoreAssignment(w http.ResponseWriter, r *http.Request) {
	restored, err := h.Store.RestoreAssignment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, restored, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePurgeAssignment(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.HardDeleteAssignment(r.Context(), chi.URLParam(r, "id")); err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "purged"}, middleware.GetRequestID(r.Context()))
}
