package service

import (
	"context"
	"encoding/json"
	"regexp"

	"RosterRoyalsServer/internal/domain"
	"RosterRoyalsServer/internal/metrics"

	"go.uber.org/zap"
)

var sportParamExpr = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,63}$`)

type OddsProvider interface {
	Sports(ctx context.Context) ([]json.RawMessage, error)
	Events(ctx context.Context, sport string) (json.RawMessage, error)
}

// OddsService forwards odds lookups to the provider. Nothing is cached.
type OddsService struct {
	Provider OddsProvider
	Logger   *zap.Logger
}

func (s *OddsService) upstream(endpoint string, err error) error {
	if s.Logger != nil {
		s.Logger.Warn("odds: provider call failed", zap.String("endpoint", endpoint), zap.Error(err))
	}
	return domain.Upstream("odds provider unavailable", err)
}

func (s *OddsService) Sports(ctx context.Context) ([]json.RawMessage, error) {
	sports, err := s.Provider.Sports(ctx)
	metrics.OddsCall("sports", err)
	if err != nil {
		return nil, s.upstream("sports", err)
	}
	return sports, nil
}

func (s *OddsService) Events(ctx context.Context, sport string) (json.RawMessage, error) {
	if !sportParamExpr.MatchString(sport) {
		return nil, domain.NewValidationError(map[string]string{"sport": "invalid sport key"})
	}
	events, err := s.Provider.Events(ctx, sport)
	metrics.OddsCall("events", err)
	if err != nil {
		return nil, s.upstream("events", err)
	}
	return events, nil
}
