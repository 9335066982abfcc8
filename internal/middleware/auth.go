package middleware

import (
	"donation_backend/internal/logger"
	"donation_backend/internal/services"
	"donation_backend/pkg/apperrors"
	"donation_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

// SessionAuth - middleware проверки cookie админ-сессии.
// Запросы без валидной сессии получают 401.
func SessionAuth(sessions services.SessionService, cookieName string) gin.HandlerFunc {
	return sessionAuth(sessions, cookieName, true)
}

// OptionalSessionAuth подхватывает сессию, если она есть, и никогда не отклоняет запрос.
// Используется регистрацией, открытой до появления первого аккаунта.
func OptionalSessionAuth(sessions services.SessionService, cookieName string) gin.HandlerFunc {
	return sessionAuth(sessions, cookieName, false)
}

func sessionAuth(sessions services.SessionService, cookieName string, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			if required {
				apperrors.HandleError(c, apperrors.ErrAuthenticationRequired)
				return
			}
			c.Next()
			return
		}

		identity, err := sessions.Resolve(ctx, dbFromGin(c), token)
		if err != nil {
			appErr, ok := apperrors.AsAppError(err)
			if required || !ok || appErr.HTTPCode >= 500 {
				apperrors.HandleError(c, err)
				return
			}
			logger.CtxDebug(ctx, "Ignoring invalid session cookie", "path", c.Request.URL.Path)
			c.Next()
			return
		}

		c.Set(contextkeys.AdminIDKey, identity.AdminID)
		c.Set(contextkeys.SessionIDKey, identity.SessionID)
		c.Request = c.Request.WithContext(logger.WithAdminID(ctx, identity.AdminID))
		c.Next()
	}
}
