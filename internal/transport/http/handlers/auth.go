package http_handlers

import (
	"net/http"

	"github.com/pashto-learning-app/backend/internal/application/auth"
	"github.com/pashto-learning-app/backend/internal/logger"
	"github.com/pashto-learning-app/backend/internal/metrics"
	"github.com/pashto-learning-app/backend/internal/transport/http/dto"
	"github.com/pashto-learning-app/backend/internal/transport/http/response"
)

type AuthHandler struct {
	svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.Register(r.Context(), auth.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", u.ID).
		Msg("user_registered")

	response.Created(w, dto.RegisterResponse{
		Message: "User created",
		User:    dto.NewUserView(u.Public()),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	metrics.LoginAttemptsTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.User.ID).
		Msg("user_logged_in")

	response.OK(w, dto.LoginResponse{
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	access, err := h.svc.Refresh(r.Context(), req.Token)
	metrics.TokenRefreshTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.RefreshResponse{AccessToken: access})
}

// Logout answers 200 whether or not the token matched a session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.Logout(r.Context(), req.Token); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.MessageResponse{Message: "Logged out successfully"})
}

// VerifyEmail handles GET /api/auth/verify-email?token=...
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	already, err := h.svc.VerifyEmail(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	msg := "Email verified successfully"
	if already {
		msg = "Email already verified"
	}
	response.OK(w, dto.MessageResponse{Message: msg})
}
