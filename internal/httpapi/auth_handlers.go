package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"creativecube.dev/internal/audit"
	"creativecube.dev/internal/auth"
	"creativecube.dev/internal/obs"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Email        string `json:"email"`
	RefreshToken string `json:"refresh_token"`
}

type authResponse struct {
	UserID                string    `json:"user_id"`
	Email                 string    `json:"email"`
	AccessToken           string    `json:"access_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshToken          string    `json:"refresh_token"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
}

type profileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func toAuthResponse(res *auth.AuthResult) authResponse {
	return authResponse{
		UserID:                res.UserID,
		Email:                 res.Email,
		AccessToken:           res.AccessToken,
		AccessTokenExpiresAt:  res.AccessExpiresAt,
		RefreshToken:          res.RefreshToken,
		RefreshTokenExpiresAt: res.RefreshExpiresAt,
	}
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "email and password are required")
		return
	}

	res, err := a.sessions.Register(r.Context(), email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			obs.ObserveAuthAttempt("register", "conflict")
			writeError(w, r, http.StatusConflict, "email already registered")
		default:
			obs.ObserveAuthAttempt("register", "error")
			writeError(w, r, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	obs.ObserveAuthAttempt("register", "ok")
	_ = audit.LogEvent(r.Context(), "auth.register", map[string]any{
		"user_id": res.UserID,
	})
	writeJSON(w, http.StatusCreated, toAuthResponse(res))
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := a.sessions.Login(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			obs.ObserveAuthAttempt("login", "unauthorized")
			writeError(w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		obs.ObserveAuthAttempt("login", "error")
		writeError(w, r, http.StatusInternalServerError, "login failed")
		return
	}

	obs.ObserveAuthAttempt("login", "ok")
	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"user_id": res.UserID,
	})
	writeJSON(w, http.StatusOK, toAuthResponse(res))
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := a.sessions.Refresh(r.Context(), strings.TrimSpace(req.Email), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			obs.ObserveAuthAttempt("refresh", "unauthorized")
			writeError(w, r, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		obs.ObserveAuthAttempt("refresh", "error")
		writeError(w, r, http.StatusInternalServerError, "refresh failed")
		return
	}

	obs.ObserveAuthAttempt("refresh", "ok")
	_ = audit.LogEvent(r.Context(), "auth.refresh", map[string]any{
		"user_id": res.UserID,
	})
	writeJSON(w, http.StatusOK, toAuthResponse(res))
}

func (a *API) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	token, err := extractBearerToken(r.Header.Get(authHeader))
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}

	identity, err := a.sessions.Profile(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) || errors.Is(err, auth.ErrInvalidToken) {
			writeError(w, r, http.StatusUnauthorized, "invalid token")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "profile lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		ID:        identity.ID,
		Email:     identity.Email,
		CreatedAt: identity.CreatedAt,
	})
}
