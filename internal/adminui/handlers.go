package adminui

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"RosterRoyalsServer/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func withStaff(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, staffKey, u)
}

func currentStaff(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(staffKey).(domain.User)
	return u, ok
}

func (a *app) handleLoginGet(w http.ResponseWriter, r *http.Request) {
	if u, _, ok := a.currentUser(r); ok && u.IsStaff {
		a.redirectUsers(w, r)
		return
	}
	a.templates.renderLogin(w, http.StatusOK, loginViewData{Title: "Sign in"})
}

func (a *app) handleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.templates.renderLogin(w, http.StatusBadRequest, loginViewData{Title: "Sign in", Error: "Invalid form"})
		return
	}

	login := strings.TrimSpace(r.PostForm.Get("login"))
	password := r.PostForm.Get("password")
	view := loginViewData{Title: "Sign in", Login: login}
	if login == "" || password == "" {
		view.Error = "Username and password are required"
		a.templates.renderLogin(w, http.StatusBadRequest, view)
		return
	}

	res, err := a.authSvc.Login(r.Context(), login, password, clientIP(r), r.UserAgent())
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidCredentials):
		view.Error = "Invalid credentials"
		a.templates.renderLogin(w, http.StatusUnauthorized, view)
		return
	case errors.Is(err, domain.ErrUserDisabled):
		view.Error = "This account is disabled"
		a.templates.renderLogin(w, http.StatusForbidden, view)
		return
	default:
		a.logger.Error("adminui: login failed", zap.Error(err))
		a.templates.renderError(w, http.StatusInternalServerError, "Error", "Sign in failed")
		return
	}

	if !res.User.IsStaff {
		// The session was opened by Login; close it again right away.
		if _, sessID, err := a.authSvc.Authenticate(r.Context(), res.Token); err == nil {
			_ = a.authSvc.Logout(r.Context(), sessID)
		}
		view.Error = "Not allowed"
		a.templates.renderLogin(w, http.StatusForbidden, view)
		return
	}

	a.logger.Info("adminui: staff signed in", zap.String("user_id", res.User.ID))
	a.setSessionCookie(w, res.Token)
	a.redirectUsers(w, r)
}

func (a *app) handleLogoutPost(w http.ResponseWriter, r *http.Request) {
	if _, sessID, ok := a.currentUser(r); ok {
		if err := a.authSvc.Logout(r.Context(), sessID); err != nil {
			a.logger.Warn("adminui: logout failed", zap.Error(err))
		}
	}
	a.clearSessionCookie(w)
	http.Redirect(w, r, "/admin/login", http.StatusFound)
}

func (a *app) handleUsersList(w http.ResponseWriter, r *http.Request) {
	staff, _ := currentStaff(r.Context())
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	users, err := a.adminSvc.ListUsers(r.Context(), query, page)
	if err != nil {
		a.logger.Error("adminui: list users failed", zap.Error(err))
		a.templates.renderError(w, http.StatusInternalServerError, "Error", "Failed to load users")
		return
	}

	rows := make([]userRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, userRow{
			ID:       u.ID,
			Email:    u.Email,
			Username: u.Username,
			Points:   u.Points,
			Type:     userType(u),
			Joined:   u.CreatedAt.UTC().Format("2006-01-02"),
			Disabled: u.Status == domain.UserStatusDisabled,
		})
	}

	a.templates.renderUsers(w, http.StatusOK, usersViewData{
		Title:    "Users",
		Error:    r.URL.Query().Get("error"),
		Staff:    staff.Username,
		Query:    query,
		Page:     page,
		PrevPage: page - 1,
		NextPage: page + 1,
		HasNext:  len(users) == a.adminSvc.PageSize(),
		Users:    rows,
	})
}

func (a *app) handleUserStatus(w http.ResponseWriter, r *http.Request) {
	staff, _ := currentStaff(r.Context())

	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		a.templates.renderError(w, http.StatusBadRequest, "Bad request", "Invalid user id")
		return
	}
	if err := r.ParseForm(); err != nil {
		a.templates.renderError(w, http.StatusBadRequest, "Bad request", "Invalid form")
		return
	}
	disabled, err := strconv.ParseBool(r.PostForm.Get("disabled"))
	if err != nil {
		a.templates.renderError(w, http.StatusBadRequest, "Bad request", "Invalid status")
		return
	}

	err = a.adminSvc.SetDisabled(r.Context(), staff, id, disabled)
	switch {
	case err == nil:
		a.logger.Info("adminui: user status changed",
			zap.String("actor_id", staff.ID),
			zap.String("user_id", id),
			zap.Bool("disabled", disabled),
		)
		a.redirectUsers(w, r)
	case errors.Is(err, domain.ErrNotFound):
		a.templates.renderError(w, http.StatusNotFound, "Not found", domain.Message(err))
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrConflict):
		http.Redirect(w, r, "/admin/users?error="+url.QueryEscape(domain.Message(err)), http.StatusSeeOther)
	default:
		a.logger.Error("adminui: set user status failed", zap.Error(err))
		a.templates.renderError(w, http.StatusInternalServerError, "Error", "Failed to update user")
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
