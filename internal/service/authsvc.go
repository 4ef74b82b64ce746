package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"RosterRoyalsServer/internal/auth"
	"RosterRoyalsServer/internal/domain"
)

type UsersStore interface {
	CreateUser(ctx context.Context, email, username, passwordHash string) (domain.User, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByLogin(ctx context.Context, login string) (domain.UserWithPassword, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	SetLastLogin(ctx context.Context, userID string, when time.Time) error
}

type SessionsStore interface {
	CreateSession(ctx context.Context, userID string, expiresAt time.Time, ip, userAgent string) (string, error)
	GetSession(ctx context.Context, sessionID string) (domain.Session, error)
	RevokeSession(ctx context.Context, sessionID string, when time.Time) error
	RevokeAllForUser(ctx context.Context, userID string, when time.Time) error
}

type TokenCodec interface {
	Issue(sessionID, userID string, expiresAt time.Time) (string, error)
	Parse(token string) (string, error)
}

type AuthResult struct {
	User  domain.User
	Token string
}

// ExternalLoginResult answers an ID-token exchange. When Exists is false the
// caller has no account yet and gets the verified email plus a username hint
// to finish registration with.
type ExternalLoginResult struct {
	Exists            bool
	User              domain.User
	Token             string
	Email             string
	SuggestedUsername string
}

type AuthService struct {
	Users    UsersStore
	Sessions SessionsStore
	Tokens   TokenCodec
	TokenTTL time.Duration

	GoogleClientID      string
	AppleServiceID      string
	VerifyGoogleIDToken auth.IDTokenVerifier
	VerifyAppleIDToken  auth.IDTokenVerifier

	Now func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *AuthService) Register(ctx context.Context, email, username, password, ip, userAgent string) (AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return AuthResult{}, err
	}

	u, err := s.Users.CreateUser(ctx, email, username, passwordHash)
	if err != nil {
		return AuthResult{}, err
	}
	return s.startSession(ctx, u, ip, userAgent)
}

func (s *AuthService) Login(ctx context.Context, login, password, ip, userAgent string) (AuthResult, error) {
	login = strings.TrimSpace(login)

	u, err := s.Users.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return AuthResult{}, domain.ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if u.Status == domain.UserStatusDisabled {
		return AuthResult{}, domain.ErrUserDisabled
	}
	if u.PasswordHash == "" {
		return AuthResult{}, domain.ErrInvalidCredentials
	}

	ok, err := auth.VerifyPassword(u.PasswordHash, password)
	if err != nil {
		return AuthResult{}, err
	}
	if !ok {
		return AuthResult{}, domain.ErrInvalidCredentials
	}

	res, err := s.startSession(ctx, u.User, ip, userAgent)
	if err != nil {
		return AuthResult{}, err
	}
	_ = s.Users.SetLastLogin(ctx, u.ID, s.now())
	return res, nil
}

// LoginWithExternal exchanges a Google or Apple ID token. A known email signs
// the user in and revokes their older sessions; an unknown one is reported
// back without creating an account.
func (s *AuthService) LoginWithExternal(ctx context.Context, provider auth.Provider, rawToken, ip, userAgent string) (ExternalLoginResult, error) {
	var (
		verify   auth.IDTokenVerifier
		audience string
	)
	switch provider {
	case auth.ProviderGoogle:
		verify, audience = s.VerifyGoogleIDToken, s.GoogleClientID
	case auth.ProviderApple:
		verify, audience = s.VerifyAppleIDToken, s.AppleServiceID
	default:
		return ExternalLoginResult{}, domain.NewValidationError(map[string]string{"provider": "unsupported"})
	}
	if strings.TrimSpace(rawToken) == "" {
		return ExternalLoginResult{}, domain.NewValidationError(map[string]string{"token": "required"})
	}
	if verify == nil || audience == "" {
		return ExternalLoginResult{}, fmt.Errorf("%s sign-in is not configured", provider)
	}

	ident, err := verify(ctx, rawToken, audience)
	if err != nil {
		return ExternalLoginResult{}, domain.NewValidationError(map[string]string{"token": "invalid"})
	}
	if ident.Email == "" {
		return ExternalLoginResult{}, domain.NewValidationError(map[string]string{"token": "no email in token"})
	}

	u, err := s.Users.GetUserByEmail(ctx, ident.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return ExternalLoginResult{
			Email:             ident.Email,
			SuggestedUsername: SuggestUsername(ident.Email),
		}, nil
	}
	if err != nil {
		return ExternalLoginResult{}, err
	}
	if u.Status == domain.UserStatusDisabled {
		return ExternalLoginResult{}, domain.ErrUserDisabled
	}

	if err := s.Sessions.RevokeAllForUser(ctx, u.ID, s.now()); err != nil {
		return ExternalLoginResult{}, err
	}
	res, err := s.startSession(ctx, u, ip, userAgent)
	if err != nil {
		return ExternalLoginResult{}, err
	}
	_ = s.Users.SetLastLogin(ctx, u.ID, s.now())
	return ExternalLoginResult{Exists: true, User: res.User, Token: res.Token, Email: u.Email}, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.Sessions.RevokeSession(ctx, sessionID, s.now())
}

// Authenticate resolves a bearer token to its live session and user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.User, string, error) {
	sessionID, err := s.Tokens.Parse(token)
	if err != nil {
		return domain.User{}, "", domain.ErrUnauthorized
	}
	u, err := s.GetUserForSession(ctx, sessionID)
	if err != nil {
		return domain.User{}, "", err
	}
	return u, sessionID, nil
}

func (s *AuthService) GetUserForSession(ctx context.Context, sessionID string) (domain.User, error) {
	sess, err := s.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrUnauthorized
		}
		return domain.User{}, err
	}

	u, err := s.Users.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrUnauthorized
		}
		return domain.User{}, err
	}
	if u.Status == domain.UserStatusDisabled {
		return domain.User{}, domain.ErrForbidden
	}
	return u, nil
}

func (s *AuthService) startSession(ctx context.Context, u domain.User, ip, userAgent string) (AuthResult, error) {
	expiresAt := s.now().Add(s.TokenTTL)
	sessID, err := s.Sessions.CreateSession(ctx, u.ID, expiresAt, ip, userAgent)
	if err != nil {
		return AuthResult{}, err
	}
	token, err := s.Tokens.Issue(sessID, u.ID, expiresAt)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: u, Token: token}, nil
}

// SuggestUsername derives a username hint from the local part of an email,
// keeping only characters valid in usernames.
func SuggestUsername(email string) string {
	local, _, _ := strings.Cut(email, "@")
	var b strings.Builder
	for _, r := range local {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '+':
			b.WriteRune('_')
		}
		if b.Len() == 24 {
			break
		}
	}
	out := b.String()
	for len(out) < 3 {
		out += "_"
	}
	return out
}
