package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AlphaDigitAll/xQuantum-API/pkg/jwt"
	"github.com/AlphaDigitAll/xQuantum-API/pkg/response"
	"github.com/AlphaDigitAll/xQuantum-API/pkg/tenant"
)

// LoginRequest is the login endpoint's body.
type LoginRequest struct {
	UserEmail string `json:"userEmail"`
	Password  string `json:"password"`
}

// Handler exposes the auth endpoints over HTTP.
type Handler struct {
	service *Service
	log     *slog.Logger
}

// NewHandler creates the auth HTTP handler.
func NewHandler(service *Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Routes returns the auth route group. Login is anonymous; refresh and logout
// require a valid token, enforced by the tenant middleware on the parent
// router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.login)
	r.Post("/refresh", h.refresh)
	r.Post("/logout", h.logout)
	return r
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	resp, err := h.service.Login(r.Context(), req.UserEmail, req.Password)
	switch {
	case err == nil:
		response.OK(w, resp, "Login successful.")
	case errors.Is(err, ErrMissingCredentials):
		response.Fail(w, http.StatusBadRequest, "UserEmail and password are required.")
	case errors.Is(err, ErrInvalidCredentials):
		response.Fail(w, http.StatusUnauthorized, "Invalid credentials.")
	default:
		h.log.ErrorContext(r.Context(), "login failed",
			slog.Any("error", err))
		response.Fail(w, http.StatusInternalServerError, "An error occurred during login.")
	}
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwt.GetClaims(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	resp, err := h.service.Refresh(r.Context(), claims)
	switch {
	case err == nil:
		response.OK(w, resp, "Token refreshed.")
	case errors.Is(err, ErrInvalidCredentials):
		response.Fail(w, http.StatusUnauthorized, "Invalid token.")
	default:
		h.log.ErrorContext(r.Context(), "token refresh failed",
			slog.Any("error", err))
		response.Fail(w, http.StatusInternalServerError, "An error occurred during token refresh.")
	}
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := tenant.FromContext(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	h.service.Logout(r.Context(), identity.OrgID)
	response.OK(w, nil, "Logged out successfully.")
}
