package httpapi

import (
	"net/http"
	"net/mail"
	"strings"

	"RosterRoyalsServer/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const minPasswordLen = 8

func validUsername(s string) bool {
	if len(s) < 3 || len(s) > 24 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}

func validEmail(s string) bool {
	if len(s) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// uuidParam reads a chi path parameter that must hold a UUID.
func uuidParam(r *http.Request, name string) (string, error) {
	return parseUUIDField(chi.URLParam(r, name), name)
}

func parseUUIDField(raw, field string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.NewValidationError(map[string]string{field: "required"})
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", domain.NewValidationError(map[string]string{field: "must be a uuid"})
	}
	return id.String(), nil
}
