package cloudbet

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	base, err := url.Parse(srv.URL + "/pub/v2/")
	require.NoError(t, err)
	return NewClient(base, "secret", time.Second)
}

func TestSportsFiltersSupportedWithEvents(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pub/v2/odds/sports", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		_, _ = w.Write([]byte(`{"sports":[
			{"key":"soccer","name":"Soccer","eventCount":12},
			{"key":"basketball","name":"Basketball","eventCount":0},
			{"key":"darts","name":"Darts","eventCount":4},
			{"key":"ice-hockey","name":"Ice Hockey","eventCount":3}
		]}`))
	})

	sports, err := c.Sports(context.Background())
	require.NoError(t, err)
	require.Len(t, sports, 2)
	require.JSONEq(t, `{"key":"soccer","name":"Soccer","eventCount":12}`, string(sports[0]))
	require.JSONEq(t, `{"key":"ice-hockey","name":"Ice Hockey","eventCount":3}`, string(sports[1]))
}

func TestSportsEmptyWhenNoneMatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"sports":[]}`))
	})
	sports, err := c.Sports(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sports)
	require.Empty(t, sports)
}

func TestEventsPassThrough(t *testing.T) {
	payload := `{"key":"soccer","competitions":[{"key":"soccer-england-premier-league","events":[]}]}`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pub/v2/odds/sports/soccer", r.URL.Path)
		_, _ = w.Write([]byte(payload))
	})
	got, err := c.Events(context.Background(), "soccer")
	require.NoError(t, err)
	require.JSONEq(t, payload, string(got))
}

func TestUpstreamStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	})
	_, err := c.Events(context.Background(), "soccer")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusForbidden, se.StatusCode)
}

func TestMissingAPIKey(t *testing.T) {
	base, _ := url.Parse("https://example.invalid/")
	_, err := NewClient(base, "", time.Second).Sports(context.Background())
	require.ErrorIs(t, err, ErrNotConfigured)
}
