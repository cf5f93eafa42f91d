package directoryhandler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"erphrm/internal/domain/auth"
	"erphrm/internal/domain/directory"
	"erphrm/internal/transport/http/api"
	"erphrm/internal/transport/http/middleware"
)

type Handler struct {
	Store *directory.Store
}

func NewHandler(store *directory.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequireRole(auth.HRReadRoles...)
	write := middleware.RequireRole(auth.HRWriteRoles...)

	r.Route("/employees", func(r chi.Router) {
		r.With(read).Get("/", h.handleListEmployees)
		r.With(read).Get("/{code}", h.handleGetEmployee)
		r.With(write).Post("/", h.handleCreateEmployee)
		r.With(write).Put("/{code}", h.handleUpdateEmployee)
		r.With(write).Delete("/{code}", h.handleDeleteEmployee)
		r.With(write).Post("/{code}/restore", h.handleRestoreEmployee)
		r.With(write).Delete("/{code}/purge", h.handlePurgeEmployee)
	})

	r.Route("/departments", func(r chi.Router) {
		r.With(read).Get("/", h.handleListDepartments)
		r.With(read).Get("/{code}", h.handleGetDepartment)
		r.With(write).Post("/", h.handleCreateDepartment)
		r.With(write).Put("/{code}", h.handleUpdateDepartment)
		r.With(write).Delete("/{code}", h.handleDeleteDepartment)
		r.With(write).Post("/{code}/restore", h.handleRestoreDepartment)
		r.With(write).Delete("/{code}/purge", h.handlePurgeDepartment)
	})

	r.Route("/positions", func(r chi.Router) {
		r.With(read).Get("/", h.handleListPositions)
		r.With(read).Get("/{code}", h.handleGetPosition)
		r.With(write).Post("/", h.handleCreatePosition)
		r.With(write).Put("/{code}", h.handleUpdatePosition)
		r.With(write).Delete("/{code}", h.handleDeletePosition)
		r.With(write).Post("/{code}/restore", h.handleRestorePosition)
		r.With(write).Delete("/{code}/purge", h.handlePurgePosition)
	})
}

func includeDeleted(r *http.Request) bool {
	value, _ := strconv.ParseBool(r.URL.Query().Get("includeDeleted"))
	return value
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployeeDetails(r.Context(), includeDeleted(r))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Store.GetEmployeeDetail(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	if detail == nil {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, detail, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var payload directory.Employee
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	created, err := h.Store.CreateEmployee(r.Context(), payload)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var patch directory.EmployeeUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	updated, err := h.Store.UpdateEmployee(r.Context(), chi.URLParam(r, "code"), patch)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.SoftDeleteEmployee(r.Context(), chi.URLParam(r, "code")); err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRestoreEmployee(w http.ResponseWriter, r *http.Request) {
	restored, err := h.Store.RestoreEmployee(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, restored, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePurgeEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.HardDeleteEmployee(r.Context(), chi.URLParam(r, "code")); err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "purged"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Store.ListDepartmentDetails(r.Context(), includeDeleted(r))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, departments, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetDepartment(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Store.GetDepartmentDetail(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	if detail == nil {
		api.Fail(w, http.StatusNotFound, "not_found", "department not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, detail, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	var payload directory.Department
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	created, err := h.Store.CreateDepartment(r.Context(), payload)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	var patch directory.DepartmentUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	updated, err := h.Store.UpdateDepartment(r.Context(), chi.URLParam(r, "code"), patch)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.SoftDeleteDepartment(r.Context(), chi.URLParam(r, "code")); err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRestoreDepartment(w http.ResponseWriter, r *http.Request) {
	restored, err := h.Store.RestoreDepartment(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, restored, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePurgeDepartment(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.HardDeleteDepartment(r.Context(), chi.URLParam(r, "code")); err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "purged"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.Store.ListPositionDetails(r.Context(), includeDeleted(r))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, positions, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Store.GetPositionDetail(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	if detail == nil {
		api.Fail(w, http.StatusNotFound, "not_found", "position not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, detail, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreatePosition(w http.ResponseWriter, r *http.Request) {
	var payload directory.Position
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	created, err := h.Store.CreatePosition(r.Context(), payload)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdatePosition(w http.ResponseWriter, r *http.Request) {
	var patch directory.PositionUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	updated, err := h.Store.UpdatePosition(r.Context(), chi.URLParam(r, "code"), patch)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeletePosition(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.SoftDeletePosition(r.Context(), chi.URLParam(r, "code")); err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRestorePosition(w http.ResponseWriter, r *http.Request) {
	restored, err := h.Store.RestorePosition(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, restored, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePurgePosition(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.HardDeletePosition(r.Context(), chi.URLParam(r, "code")); err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "purged"}, middleware.GetRequestID(r.Context()))
}
