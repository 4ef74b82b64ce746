package adminui

import (
	"net/http"
	"time"

	"RosterRoyalsServer/internal/domain"
	"RosterRoyalsServer/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const sessionCookieName = "rr_admin"

type Opts struct {
	Logger *zap.Logger

	Auth         *service.AuthService
	Admin        *service.AdminService
	CookieSecure bool
	TokenTTL     time.Duration
}

// New returns the staff console. It is meant to be mounted at /admin.
func New(opts Opts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Auth == nil || opts.Admin == nil {
		return http.NotFoundHandler()
	}

	t, err := parseTemplates()
	if err != nil {
		logger.Error("adminui: parse templates failed", zap.Error(err))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "internal server error", http.StatusInternalServerError)
		})
	}

	app := &app{
		logger:       logger,
		authSvc:      opts.Auth,
		adminSvc:     opts.Admin,
		cookieSecure: opts.CookieSecure,
		tokenTTL:     opts.TokenTTL,
		templates:    t,
	}

	r := chi.NewRouter()
	r.Get("/", app.redirectUsers)
	r.Get("/login", app.handleLoginGet)
	r.Post("/login", app.handleLoginPost)
	r.Post("/logout", app.handleLogoutPost)
	r.Group(func(r chi.Router) {
		r.Use(app.requireStaff)
		r.Get("/users", app.handleUsersList)
		r.Post("/users/{id}/status", app.handleUserStatus)
	})
	return r
}

type app struct {
	logger *zap.Logger

	authSvc  *service.AuthService
	adminSvc *service.AdminService

	cookieSecure bool
	tokenTTL     time.Duration

	templates *templates
}

type ctxKey int

const staffKey ctxKey = iota

func (a *app) redirectUsers(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin/users", http.StatusFound)
}

func (a *app) requireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _, ok := a.currentUser(r)
		if !ok {
			http.Redirect(w, r, "/admin/login", http.StatusFound)
			return
		}
		if !u.IsStaff {
			a.templates.renderError(w, http.StatusForbidden, "Forbidden", "This account is not allowed to access admin.")
			return
		}
		next.ServeHTTP(w, r.WithContext(withStaff(r.Context(), u)))
	})
}

func (a *app) currentUser(r *http.Request) (domain.User, string, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return domain.User{}, "", false
	}
	u, sessID, err := a.authSvc.Authenticate(r.Context(), c.Value)
	if err != nil {
		return domain.User{}, "", false
	}
	return u, sessID, true
}

func (a *app) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/admin",
		MaxAge:   int(a.tokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   a.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (a *app) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/admin",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
