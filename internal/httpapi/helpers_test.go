package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"RosterRoyalsServer/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

const (
	userAID  = "11111111-1111-4111-8111-111111111111"
	userBID  = "22222222-2222-4222-8222-222222222222"
	groupID  = "33333333-3333-4333-8333-333333333333"
	objectID = "44444444-4444-4444-8444-444444444444"
)

var (
	testUserA = domain.User{ID: userAID, Username: "alice", Points: domain.DefaultPoints, Status: domain.UserStatusActive}
	testUserB = domain.User{ID: userBID, Username: "bob", Points: domain.DefaultPoints, Status: domain.UserStatusActive}
)

// authedRequest builds a request as if requireAuth and chi routing had run.
func authedRequest(method, target, body string, u domain.User, params map[string]string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	return req.WithContext(withAuth(ctx, u, "sess-1"))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apiError {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env.Error
}

func decodeMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp messageResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp.Message
}

type stubUsers map[string]domain.User

func (s stubUsers) GetUserByID(_ context.Context, id string) (domain.User, error) {
	u, ok := s[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}
