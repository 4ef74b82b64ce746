package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"RosterRoyalsServer/internal/domain"
)

const (
	searchMinChars = 2
	searchLimit    = 10
)

type UsersSearchStore interface {
	SearchUsers(ctx context.Context, actorID, query string, limit int) ([]domain.UserSearchResult, error)
}

type UsersService struct {
	Store UsersSearchStore
}

// Search returns an empty list for queries too short to be useful rather than
// an error.
func (s *UsersService) Search(ctx context.Context, actorID, q string) ([]domain.UserSearchResult, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < searchMinChars {
		return []domain.UserSearchResult{}, nil
	}
	return s.Store.SearchUsers(ctx, actorID, q, searchLimit)
}
