package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HendrickPhan/go-verify-apple-id-token/validator"
	"google.golang.org/api/idtoken"
)

type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderApple  Provider = "apple"
)

// ExternalIdentity is what a verified third-party ID token tells us about the
// caller.
type ExternalIdentity struct {
	Provider Provider
	Subject  string
	Email    string
}

// IDTokenVerifier checks a raw ID token against the expected audience.
type IDTokenVerifier func(ctx context.Context, rawToken, audience string) (*ExternalIdentity, error)

func VerifyGoogleIDToken(ctx context.Context, rawToken, audience string) (*ExternalIdentity, error) {
	if err := checkVerifyArgs(rawToken, audience); err != nil {
		return nil, err
	}
	payload, err := idtoken.Validate(ctx, rawToken, audience)
	if err != nil {
		return nil, err
	}
	switch payload.Issuer {
	case "accounts.google.com", "https://accounts.google.com":
	default:
		return nil, fmt.Errorf("unexpected issuer: %s", payload.Issuer)
	}
	email, _ := payload.Claims["email"].(string)
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, errors.New("google email not verified")
	}
	return &ExternalIdentity{
		Provider: ProviderGoogle,
		Subject:  payload.Subject,
		Email:    normalizeEmail(email),
	}, nil
}

func VerifyAppleIDToken(_ context.Context, rawToken, audience string) (*ExternalIdentity, error) {
	if err := checkVerifyArgs(rawToken, audience); err != nil {
		return nil, err
	}
	tok, err := validator.NewClient().VerifyIdToken(audience, rawToken)
	if err != nil {
		return nil, err
	}
	if tok.Iss != "https://appleid.apple.com" {
		return nil, fmt.Errorf("unexpected issuer: %s", tok.Iss)
	}
	return &ExternalIdentity{
		Provider: ProviderApple,
		Subject:  tok.Sub,
		Email:    normalizeEmail(tok.Email),
	}, nil
}

func checkVerifyArgs(rawToken, audience string) error {
	if strings.TrimSpace(rawToken) == "" {
		return errors.New("missing id token")
	}
	if strings.TrimSpace(audience) == "" {
		return errors.New("id token audience not configured")
	}
	return nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
