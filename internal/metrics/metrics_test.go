package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestInstrumentUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Instrument)
	r.Get("/v1/groups/{groupID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/v1/groups/{groupID}", "418"))
	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/groups/"+id, nil))
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/v1/groups/{groupID}", "418"))
	require.Equal(t, before+2, after)
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(notificationsCreated.WithLabelValues("group_invite"))
	NotificationCreated("group_invite")
	require.Equal(t, before+1, testutil.ToFloat64(notificationsCreated.WithLabelValues("group_invite")))

	before = testutil.ToFloat64(oddsCalls.WithLabelValues("sports", "error"))
	OddsCall("sports", errors.New("down"))
	require.Equal(t, before+1, testutil.ToFloat64(oddsCalls.WithLabelValues("sports", "error")))

	before = testutil.ToFloat64(notificationsSwept)
	NotificationsSwept(0)
	NotificationsSwept(3)
	require.Equal(t, before+3, testutil.ToFloat64(notificationsSwept))
}

func TestHandlerExposesRegistry(t *testing.T) {
	Resolved("friend_request", "accepted")
	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, strings.Contains(rr.Body.String(), "roster_royals_relationships_resolutions_total"))
}
