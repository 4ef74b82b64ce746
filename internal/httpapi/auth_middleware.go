package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"

	"RosterRoyalsServer/internal/auth"
	"RosterRoyalsServer/internal/domain"
)

type authCtxKey int

const (
	authUserKey authCtxKey = iota
	authSessionKey
)

// requireAuth resolves the bearer token to a live session. Handlers behind it
// can rely on CurrentUser.
func (a *api) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.TokenFromRequest(r)
		if !ok {
			WriteDomainError(w, domain.ErrUnauthorized)
			return
		}

		u, sessID, err := a.authSvc.Authenticate(r.Context(), token)
		if err != nil {
			a.fail(w, r, err)
			return
		}

		ctx := withAuth(r.Context(), u, sessID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func withAuth(ctx context.Context, u domain.User, sessionID string) context.Context {
	ctx = context.WithValue(ctx, authUserKey, u)
	return context.WithValue(ctx, authSessionKey, sessionID)
}

func CurrentUser(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(authUserKey).(domain.User)
	return u, ok
}

func CurrentSessionID(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(authSessionKey).(string)
	return s, ok
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
