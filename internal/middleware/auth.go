package middleware

import (
	"strings"

	"property-service/internal/apperror"
	"property-service/internal/model"
	"property-service/pkg/jwtutil"
	"property-service/pkg/logger"
	"property-service/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	userIDKey   = "user_id"
	userRoleKey = "user_role"
)

// AuthMiddleware validates the bearer token and stores the caller's id and role
func AuthMiddleware(jwt *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			// Get the Authorization header
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				log.Warn("Missing Authorization header")
				prometheus.RecordAuthAttempt(false)
				return apperror.New(apperror.KindUnauthorized, "missing authorization token")
			}

			// Check if it's a Bearer token
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Warn("Invalid Authorization header format")
				prometheus.RecordAuthAttempt(false)
				return apperror.New(apperror.KindUnauthorized, "invalid authorization format, expected Bearer token")
			}

			claims, err := jwt.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid JWT token", zap.Error(err))
				prometheus.RecordAuthAttempt(false)
				return apperror.New(apperror.KindUnauthorized, "invalid or expired token")
			}
			prometheus.RecordAuthAttempt(true)

			// ValidateToken already checked the claim
			userID, _ := claims.ParsedUserID()

			c.Set(userIDKey, userID)
			c.Set(userRoleKey, model.UserRole(strings.ToUpper(claims.Role)))

			log = log.With(zap.String("user_id", userID.String()))
			c.Set(logger.EchoKey, log)
			c.SetRequest(c.Request().WithContext(logger.WithLogger(c.Request().Context(), log)))

			return next(c)
		}
	}
}

// GetUserIDFromContext retrieves the authenticated user id.
// Returns uuid.Nil, false if the request was not authenticated.
func GetUserIDFromContext(c echo.Context) (uuid.UUID, bool) {
	userID, ok := c.Get(userIDKey).(uuid.UUID)
	return userID, ok
}

// GetUserRoleFromContext retrieves the role claim of the authenticated user
func GetUserRoleFromContext(c echo.Context) (model.UserRole, bool) {
	role, ok := c.Get(userRoleKey).(model.UserRole)
	return role, ok
}
