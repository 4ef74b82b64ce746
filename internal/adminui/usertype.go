package adminui

import "RosterRoyalsServer/internal/domain"

func userType(u domain.User) string {
	switch {
	case u.Status == domain.UserStatusDisabled:
		return "Disabled"
	case u.IsStaff:
		return "Staff"
	default:
		return "User"
	}
}
