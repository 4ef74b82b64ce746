package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"RosterRoyalsServer/internal/domain"

	"github.com/stretchr/testify/require"
)

type stubOdds struct {
	sports    []json.RawMessage
	events    json.RawMessage
	err       error
	lastSport string
}

func (s *stubOdds) Sports(context.Context) ([]json.RawMessage, error) { return s.sports, s.err }

func (s *stubOdds) Events(_ context.Context, sport string) (json.RawMessage, error) {
	s.lastSport = sport
	return s.events, s.err
}

func TestOddsUpstreamFailure(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	svc := &OddsService{Provider: &stubOdds{err: cause}}

	_, err := svc.Sports(context.Background())
	require.ErrorIs(t, err, domain.ErrUpstream)
	require.ErrorIs(t, err, cause)

	_, err = svc.Events(context.Background(), "soccer")
	require.ErrorIs(t, err, domain.ErrUpstream)
}

func TestOddsEventsValidatesSport(t *testing.T) {
	p := &stubOdds{events: json.RawMessage(`{"key":"soccer"}`)}
	svc := &OddsService{Provider: p}

	_, err := svc.Events(context.Background(), "../admin")
	require.ErrorIs(t, err, domain.ErrValidation)
	require.Empty(t, p.lastSport)

	got, err := svc.Events(context.Background(), "ice-hockey")
	require.NoError(t, err)
	require.Equal(t, "ice-hockey", p.lastSport)
	require.JSONEq(t, `{"key":"soccer"}`, string(got))
}
