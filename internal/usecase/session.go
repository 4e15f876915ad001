package usecase

import (
	"strings"

	"care-booking/internal/data/entity"
	"care-booking/pkg/utils"
)

type RoleSource string

const (
	RoleFromColumn        RoleSource = "column"
	RoleFromStaffRecord   RoleSource = "staff_record"
	RoleFromEmailFallback RoleSource = "email_fallback"
	RoleDefault           RoleSource = "default"
)

// ResolveRole decides the caller's role from what the store returned. The
// users.role column wins. An active staff record comes next. Matching the
// email against staffDomain only applies to legacy rows without a role; it is
// a heuristic kept for migration and is reported as RoleFromEmailFallback so
// callers can log it.
func ResolveRole(user *entity.User, staff *entity.Staff, staffDomain string) (entity.UserRole, RoleSource) {
	if user == nil {
		return entity.RolePatient, RoleDefault
	}
	if user.Role.IsValid() {
		return user.Role, RoleFromColumn
	}
	if staff != nil && staff.IsActive {
		if staff.Role == entity.RoleAdmin {
			return entity.RoleAdmin, RoleFromStaffRecord
		}
		return entity.RoleStaff, RoleFromStaffRecord
	}
	domain := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(staffDomain), "@"))
	if domain != "" && strings.HasSuffix(strings.ToLower(user.Email), "@"+domain) {
		return entity.RoleStaff, RoleFromEmailFallback
	}
	return entity.RolePatient, RoleDefault
}

func requireSession(sess *utils.Session) error {
	if sess == nil {
		return ErrUnauthorized
	}
	return nil
}

func requireStaff(sess *utils.Session) error {
	if sess == nil {
		return ErrUnauthorized
	}
	if !sess.IsStaff() {
		return ErrForbidden
	}
	return nil
}

func requireAdmin(sess *utils.Session) error {
	if sess == nil {
		return ErrUnauthorized
	}
	if !sess.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
