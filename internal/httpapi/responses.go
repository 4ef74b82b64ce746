package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"RosterRoyalsServer/internal/domain"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: message}})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, messageResponse{Message: msg})
}

// classify maps a domain error to its HTTP status and envelope. ok is false
// for errors outside the domain taxonomy.
func classify(err error) (int, apiError, bool) {
	msg := func(def string) string {
		if m := domain.Message(err); m != "" {
			return m
		}
		return def
	}

	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, apiError{Code: "validation_error", Message: "invalid request", Fields: ve.Fields}, true
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, apiError{Code: "validation_error", Message: "invalid request"}, true
	case errors.Is(err, domain.ErrUsernameTaken):
		return http.StatusConflict, apiError{Code: "username_taken", Message: "username already taken"}, true
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict, apiError{Code: "email_taken", Message: "email already taken"}, true
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, apiError{Code: "invalid_credentials", Message: "invalid login or password"}, true
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, apiError{Code: "unauthorized", Message: "unauthorized"}, true
	case errors.Is(err, domain.ErrUserDisabled):
		return http.StatusForbidden, apiError{Code: "user_disabled", Message: "user is disabled"}, true
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, apiError{Code: "forbidden", Message: msg("forbidden")}, true
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, apiError{Code: "not_found", Message: msg("not found")}, true
	case errors.Is(err, domain.ErrConflict):
		return http.StatusBadRequest, apiError{Code: "conflict", Message: msg("conflict")}, true
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway, apiError{Code: "upstream_failure", Message: msg("upstream failure")}, true
	}
	return http.StatusInternalServerError, apiError{Code: "internal_error", Message: "internal server error"}, false
}

func WriteDomainError(w http.ResponseWriter, err error) {
	status, body, _ := classify(err)
	WriteJSON(w, status, errorEnvelope{Error: body})
}

// fail is WriteDomainError plus logging for unexpected errors. Outside prod
// the error text is returned to the client.
func (a *api) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, body, ok := classify(err)
	if !ok {
		a.log().Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		if !a.isProd {
			body.Message = err.Error()
		}
	}
	WriteJSON(w, status, errorEnvelope{Error: body})
}

func writeBadJSON(w http.ResponseWriter, err error) {
	WriteError(w, http.StatusBadRequest, "bad_json", badJSONMessage(err))
}
