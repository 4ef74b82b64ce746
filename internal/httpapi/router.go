package httpapi

import (
	"context"
	"net/http"
	"time"

	"RosterRoyalsServer/internal/metrics"
	"RosterRoyalsServer/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type RouterOpts struct {
	Logger      *zap.Logger
	IsProd      bool
	CORSOrigins []string

	DBPing func(context.Context) error

	Auth          *service.AuthService
	Users         *service.UsersService
	Friends       *service.FriendsService
	Groups        *service.GroupsService
	Notifications *service.NotificationService
	Odds          *service.OddsService

	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
	// Admin is the staff console, mounted at /admin when set.
	Admin http.Handler
}

func NewRouter(opts RouterOpts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	api := &api{
		logger:           logger,
		isProd:           opts.IsProd,
		dbPing:           opts.DBPing,
		authSvc:          opts.Auth,
		usersSvc:         opts.Users,
		friendsSvc:       opts.Friends,
		groupsSvc:        opts.Groups,
		notificationsSvc: opts.Notifications,
		oddsSvc:          opts.Odds,
		loginLimiter:     newLoginLimiter(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(EchoRequestID)
	r.Use(RequestLogger(logger))
	r.Use(Recoverer(logger, opts.IsProd))
	r.Use(metrics.Instrument)
	r.Use(CORS(opts.CORSOrigins))

	r.NotFound(handleNotFound)
	r.MethodNotAllowed(handleMethodNotAllowed)

	r.Get("/healthz", api.handleHealthz)
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}
	if opts.Admin != nil {
		r.Mount("/admin", opts.Admin)
	}

	r.Route("/v1", func(r chi.Router) {
		if api.authSvc == nil {
			r.HandleFunc("/*", handleNotImplemented)
			return
		}

		r.Post("/auth/register", api.handleAuthRegister)
		r.Post("/auth/login", api.handleAuthLogin)
		r.Post("/auth/google", api.handleAuthGoogle)
		r.Post("/auth/apple", api.handleAuthApple)

		r.Group(func(r chi.Router) {
			r.Use(api.requireAuth)

			r.Post("/auth/logout", api.handleAuthLogout)
			r.Get("/users/me", api.handleUsersMe)
			if api.usersSvc != nil {
				r.Get("/users/search", api.handleUsersSearch)
			}

			if api.friendsSvc != nil {
				r.Get("/friends", api.handleFriendsList)
				r.Delete("/friends/{userID}", api.handleFriendsRemove)
				r.Get("/friends/requests", api.handleFriendsIncoming)
				r.Post("/friends/requests", api.handleFriendsSendRequest)
				r.Post("/friends/requests/{id}/respond", api.handleFriendsRespond)
			}

			if api.groupsSvc != nil {
				r.Get("/groups", api.handleGroupsList)
				r.Post("/groups", api.handleGroupsCreate)
				r.Get("/groups/{id}", api.handleGroupsGet)
				r.Post("/groups/{id}/members", api.handleGroupsAddMember)
				r.Post("/groups/{id}/invites", api.handleGroupsInvite)
				r.Post("/group-invites/{id}/respond", api.handleGroupInviteRespond)
			}

			if api.notificationsSvc != nil {
				r.Get("/notifications", api.handleNotificationsList)
				r.Post("/notifications/read", api.handleNotificationsMarkRead)
				r.Post("/notifications/devices", api.handleNotificationsTokenUpsert)
				r.Delete("/notifications/devices", api.handleNotificationsTokenDelete)
			}

			if api.oddsSvc != nil {
				r.Get("/odds/sports", api.handleOddsSports)
				r.Get("/odds/sports/{sport}", api.handleOddsEvents)
			}
		})
	})

	return r
}

func handleNotImplemented(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotImplemented, "not_implemented", "not implemented")
}

func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotFound, "not_found", "not found")
}

func handleMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
}

type api struct {
	logger *zap.Logger
	isProd bool

	dbPing func(context.Context) error

	authSvc          *service.AuthService
	usersSvc         *service.UsersService
	friendsSvc       *service.FriendsService
	groupsSvc        *service.GroupsService
	notificationsSvc *service.NotificationService
	oddsSvc          *service.OddsService

	loginLimiter *loginLimiter
}

func (a *api) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if a.dbPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()
		if err := a.dbPing(ctx); err != nil {
			a.log().Warn("healthz: db ping failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db down"))
			return
		}
	}

	_, _ = w.Write([]byte("ok"))
}
