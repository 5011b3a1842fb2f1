package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/morpion/internal/api/apierr"
	"github.com/mcoot/morpion/internal/api/middleware"
	"github.com/mcoot/morpion/internal/api/request"
	"github.com/mcoot/morpion/internal/api/response"
	"github.com/mcoot/morpion/internal/services/auth"
)

const confirmedMessage = "Your mail have been confirmed, you can log-in now"

// UserHandler handles account endpoints
type UserHandler struct {
	authService *auth.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(authService *auth.Service) *UserHandler {
	return &UserHandler{
		authService: authService,
	}
}

// Register handles POST /api/v1/users/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.authService.Register(r.Context(), auth.RegisterRequest{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		EnableTwoFactor: req.EnableTwoFactor,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RegisterResponseFromResult(result))
}

// Login handles POST /api/v1/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.authService.Login(r.Context(), auth.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		Code:     req.TwoFactorCode,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := apierr.FromOutcome(result.Outcome); err != nil {
		WriteError(w, err)
		return
	}

	response.SetSessionCookie(w, middleware.SessionCookieName, result.Session.Token, result.Session.ExpiresAt)
	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(result.Session))
}

// Confirm handles GET /api/v1/users/{id}/confirm/{token}
func (h *UserHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromPath(w, r)
	if !ok {
		return
	}
	token := mux.Vars(r)["token"]

	outcome, err := h.authService.ConfirmEmail(r.Context(), userID, token)
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := apierr.FromOutcome(outcome); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Message{Message: confirmedMessage})
}

// Logout handles POST /api/v1/users/logout
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	if session == nil {
		WriteError(w, NewUnauthorizedError())
		return
	}

	if err := h.authService.InvalidateSession(r.Context(), session.Token); err != nil {
		WriteError(w, err)
		return
	}

	response.ClearSessionCookie(w, middleware.SessionCookieName)
	response.NoContent(w)
}

// GetMe handles GET /api/v1/users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	response.JSON(w, http.StatusOK, response.UserFromModel(*user))
}
