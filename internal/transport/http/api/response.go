package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"erphrm/internal/domain/hrerr"
)

type Error struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}

// FailErr maps a domain error onto the wire: the error kind picks the HTTP
// status and becomes the machine-readable code.
func FailErr(w http.ResponseWriter, err error, requestID string) {
	kind := hrerr.KindOf(err)
	apiErr := &Error{Code: string(kind), Field: hrerr.FieldOf(err), Message: hrerr.MessageOf(err)}
	if kind == "" {
		slog.Error("unhandled error", "err", err, "requestId", requestID)
		Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
		return
	}
	WriteJSON(w, statusFor(kind), Envelope{Success: false, Error: apiErr, RequestID: requestID})
}

func statusFor(kind hrerr.Kind) int {
	switch kind {
	case hrerr.NotFound:
		return http.StatusNotFound
	case hrerr.DuplicateKey, hrerr.DuplicateAssignment, hrerr.ManagerConflict,
		hrerr.CapacityExceeded, hrerr.DependentRecordsExist:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
