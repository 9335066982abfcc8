package middleware

import (
	"fmt"
	"log/slog"
	"time"

	"donation_backend/internal/logger"
	"donation_backend/pkg/apperrors"
	"donation_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const requestIDHeader = "X-Request-ID"

func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		log := logger.FromContext(c.Request.Context())
		status := c.Writer.Status()
		fields := []any{
			slog.String("client_ip", c.ClientIP()),
			slog.String("user_agent", c.Request.UserAgent()),
			slog.Int("status", status),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Duration("duration", duration),
			slog.Int("size_bytes", c.Writer.Size()),
		}
		switch {
		case status >= 500:
			log.Error("HTTP Server Error", fields...)
		case status >= 400:
			log.Warn("HTTP Client Error", fields...)
		default:
			log.Info("HTTP Request", fields...)
		}
	}
}

// DBMiddleware кладет *gorm.DB запроса в gin контекст.
// Транзакция, уже лежащая в контексте запроса, имеет приоритет.
func DBMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		scoped, ok := ctx.Value(contextkeys.DBContextKey).(*gorm.DB)
		if !ok || scoped == nil {
			scoped = db
		}
		if scoped != nil {
			scoped = scoped.WithContext(ctx)
		}
		c.Set(string(contextkeys.DBContextKey), scoped)
		c.Next()
	}
}

// RecoveryMiddleware превращает панику хэндлера в стандартный ответ 500,
// процесс продолжает работу.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		err, ok := recovered.(error)
		if !ok {
			err = fmt.Errorf("panic: %v", recovered)
		}
		logger.CtxError(c.Request.Context(), "Panic recovered", "panic", fmt.Sprint(recovered), "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.InternalError(err))
	})
}

func dbFromGin(c *gin.Context) *gorm.DB {
	if v, ok := c.Get(string(contextkeys.DBContextKey)); ok {
		if db, ok := v.(*gorm.DB); ok {
			return db
		}
	}
	return nil
}
