package utils

import (
	"context"

	"care-booking/internal/data/entity"

	"github.com/google/uuid"
)

type contextKey string

const sessionKey contextKey = "session"

// Session is the authenticated caller. It is resolved once by the auth
// middleware and handed explicitly to every workflow call.
type Session struct {
	UserID    uuid.UUID
	Email     string
	Role      entity.UserRole
	SessionID string
}

// IsStaff reports whether the session may act on the staff review queue.
func (s *Session) IsStaff() bool {
	return s != nil && (s.Role == entity.RoleStaff || s.Role == entity.RoleAdmin)
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == entity.RoleAdmin
}

func SetSessionContext(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

func GetSessionFromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionKey).(*Session)
	if !ok || session == nil {
		return nil, false
	}
	return session, true
}
