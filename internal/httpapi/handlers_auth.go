package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"RosterRoyalsServer/internal/auth"
	"RosterRoyalsServer/internal/domain"
)

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *api) handleAuthRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}

	fields := map[string]string{}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !validUsername(req.Username) {
		fields["username"] = "must be 3-24 chars [A-Za-z0-9_]"
	}
	if !validEmail(req.Email) {
		fields["email"] = "must be a valid email address"
	}
	if len(req.Password) < minPasswordLen {
		fields["password"] = fmt.Sprintf("must be at least %d characters", minPasswordLen)
	}
	if len(fields) > 0 {
		WriteDomainError(w, domain.NewValidationError(fields))
		return
	}

	res, err := a.authSvc.Register(r.Context(), req.Email, req.Username, req.Password, clientIP(r), r.UserAgent())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, authResponse{Token: res.Token, User: res.User})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *api) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"username": "required", "password": "required"}))
		return
	}

	now := time.Now()
	ip := clientIP(r)
	if !a.loginLimiter.Allow("ip:"+ip, now) || !a.loginLimiter.Allow("login:"+strings.ToLower(req.Username), now) {
		WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many attempts")
		return
	}

	res, err := a.authSvc.Login(r.Context(), req.Username, req.Password, ip, r.UserAgent())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, authResponse{Token: res.Token, User: res.User})
}

type idTokenRequest struct {
	Token string `json:"token"`
}

type externalLoginResponse struct {
	Exists            bool         `json:"exists"`
	Token             string       `json:"token,omitempty"`
	User              *domain.User `json:"user,omitempty"`
	Email             string       `json:"email,omitempty"`
	SuggestedUsername string       `json:"suggested_username,omitempty"`
}

func (a *api) handleAuthGoogle(w http.ResponseWriter, r *http.Request) {
	a.handleAuthExternal(w, r, auth.ProviderGoogle)
}

func (a *api) handleAuthApple(w http.ResponseWriter, r *http.Request) {
	a.handleAuthExternal(w, r, auth.ProviderApple)
}

func (a *api) handleAuthExternal(w http.ResponseWriter, r *http.Request, provider auth.Provider) {
	var req idTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}

	ip := clientIP(r)
	if !a.loginLimiter.Allow("ip:"+ip, time.Now()) {
		WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many attempts")
		return
	}

	res, err := a.authSvc.LoginWithExternal(r.Context(), provider, req.Token, ip, r.UserAgent())
	if err != nil {
		a.fail(w, r, err)
		return
	}

	if !res.Exists {
		WriteJSON(w, http.StatusOK, externalLoginResponse{
			Email:             res.Email,
			SuggestedUsername: res.SuggestedUsername,
		})
		return
	}
	u := res.User
	WriteJSON(w, http.StatusOK, externalLoginResponse{Exists: true, Token: res.Token, User: &u})
}

func (a *api) handleAuthLogout(w http.ResponseWriter, r *http.Request) {
	sessID, ok := CurrentSessionID(r.Context())
	if !ok || sessID == "" {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	if err := a.authSvc.Logout(r.Context(), sessID); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
