package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"RosterRoyalsServer/internal/domain"
)

const adminPageSize = 50

type AdminUsersStore interface {
	ListUsers(ctx context.Context, query string, limit, offset int) ([]domain.User, error)
	SetUserStatus(ctx context.Context, userID string, status domain.UserStatus) error
}

type SessionRevoker interface {
	RevokeAllForUser(ctx context.Context, userID string, when time.Time) error
}

// AdminService is the staff side of the user directory.
type AdminService struct {
	Users    AdminUsersStore
	Sessions SessionRevoker
	Now      func() time.Time
}

func (s *AdminService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// PageSize is the number of users ListUsers returns per page.
func (s *AdminService) PageSize() int { return adminPageSize }

func (s *AdminService) ListUsers(ctx context.Context, query string, page int) ([]domain.User, error) {
	if page < 1 {
		page = 1
	}
	return s.Users.ListUsers(ctx, strings.TrimSpace(query), adminPageSize, (page-1)*adminPageSize)
}

// SetDisabled toggles an account. Disabling also ends every session the user
// holds. Staff cannot disable themselves.
func (s *AdminService) SetDisabled(ctx context.Context, actor domain.User, userID string, disabled bool) error {
	if !actor.IsStaff {
		return domain.Forbidden("staff only")
	}
	if disabled && actor.ID == userID {
		return domain.Conflict("cannot disable your own account")
	}

	status := domain.UserStatusActive
	if disabled {
		status = domain.UserStatusDisabled
	}
	if err := s.Users.SetUserStatus(ctx, userID, status); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFound("user not found")
		}
		return err
	}
	if disabled && s.Sessions != nil {
		return s.Sessions.RevokeAllForUser(ctx, userID, s.now())
	}
	return nil
}
