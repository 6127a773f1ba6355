package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-flash-sale.git/internal/auth"
)

type AuthHandler struct {
	Auth *auth.Service
}

type registerReq struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type verifyOTPReq struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	OTPCode string `json:"otp_code"`
}

type loginReq struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(r *chi.Mux) {
	r.Post("/api/auth/register", h.register)
	r.Post("/api/auth/verify-otp", h.verifyOTP)
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)
}

func contact(email, phone string) string {
	if email != "" {
		return email
	}
	return phone
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	msg, err := h.Auth.Register(ctx, req.Email, req.Phone, req.Password)
	if err != nil {
		writeErr(w, authStatus(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Registration successful. Please verify with OTP.", "detail": msg})
}

func (h *AuthHandler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Auth.VerifyOTP(ctx, contact(req.Email, req.Phone), req.OTPCode); err != nil {
		writeErr(w, authStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Verification successful"})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sess, err := h.Auth.Login(ctx, contact(req.Email, req.Phone), req.Password)
	if err != nil {
		writeErr(w, authStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	_ = h.Auth.Logout(ctx, BearerToken(r))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func authStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrContactRequired), errors.Is(err, auth.ErrInvalidOTP):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrEmailTaken), errors.Is(err, auth.ErrPhoneTaken):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrNotAuthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
