package middleware

import (
	"net/http"
	"strings"
	"time"

	"care-booking/internal/data/entity"
	"care-booking/internal/data/repository"
	"care-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthSession validates the bearer JWT, checks that its session row is still
// active and stores the resolved utils.Session in the request context.
func AuthSession(sessionRepo repository.SessionRepository, secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			claims, err := utils.ParseAccessToken(secret, token)
			if err != nil {
				logger.Debug("Rejected access token", zap.Error(err))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}
			sessionToken, err := uuid.Parse(claims.SessionID)
			if err != nil {
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			session, err := sessionRepo.FindActive(r.Context(), sessionToken)
			if err != nil {
				logger.Error("Failed to validate session",
					zap.String("user_id", userID.String()),
					zap.Error(err))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			if !session.Active(time.Now()) || session.UserID != userID {
				logger.Warn("Invalid or expired session", zap.String("user_id", userID.String()))
				utils.ResponseUnauthorized(w, "Invalid or expired session")
				return
			}

			ctx := utils.SetSessionContext(r.Context(), &utils.Session{
				UserID:    userID,
				Email:     claims.Email,
				Role:      entity.UserRole(claims.Role),
				SessionID: claims.SessionID,
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole lets the request through only when the session carries one of
// the given roles. Must run after AuthSession.
func RequireRole(logger *zap.Logger, roles ...entity.UserRole) func(http.Handler) http.Handler {
	allowed := make(map[entity.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := utils.GetSessionFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			if _, ok := allowed[session.Role]; !ok {
				logger.Warn("Role check: access denied",
					zap.String("user_id", session.UserID.String()),
					zap.String("role", string(session.Role)),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireStaff(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole(logger, entity.RoleStaff, entity.RoleAdmin)
}

func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole(logger, entity.RoleAdmin)
}
