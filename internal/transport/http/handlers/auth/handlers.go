package authhandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"erphrm/internal/domain/account"
	"erphrm/internal/domain/auth"
	"erphrm/internal/transport/http/api"
	"erphrm/internal/transport/http/middleware"
)

type Handler struct {
	Accounts  *account.Store
	JWTSecret string
	TokenTTL  time.Duration
}

func NewHandler(accounts *account.Store, jwtSecret string, tokenTTL time.Duration) *Handler {
	return &Handler{Accounts: accounts, JWTSecret: jwtSecret, TokenTTL: tokenTTL}
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string          `json:"token"`
	Account *account.Detail `json:"account"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	detail, err := h.Accounts.Authenticate(r.Context(), payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, account.ErrAccountDisabled) {
			api.Fail(w, http.StatusForbidden, "account_disabled", "account is disabled", middleware.GetRequestID(r.Context()))
			return
		}
		if errors.Is(err, account.ErrInvalidCredentials) {
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password", middleware.GetRequestID(r.Context()))
			return
		}
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	claims := auth.Claims{
		Username:     detail.Username,
		EmployeeCode: detail.EmployeeCode,
		Role:         detail.Role,
	}
	if detail.Employee != nil {
		claims.Name = detail.Employee.Name
	}
	token, err := auth.GenerateToken(h.JWTSecret, claims, h.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_failed", "failed to issue token", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, loginResponse{Token: token, Account: detail}, middleware.GetRequestID(r.Context()))
}

type resetPasswordPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleResetPassword lets a user change their own password; admins may
// reset anyone's.
func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload resetPasswordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Username == "" {
		payload.Username = user.Username
	}
	if account.NormalizeUsername(payload.Username) != account.NormalizeUsername(user.Username) && user.Role != auth.RoleAdmin {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot reset another user's password", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Accounts.ResetPassword(r.Context(), payload.Username, payload.Password); err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "password reset"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	detail, err := h.Accounts.GetByUsername(r.Context(), user.Username)
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
