package handlers

import (
	"fmt"

	"donation_backend/internal/logger"
	"donation_backend/internal/validator"
	"donation_backend/pkg/apperrors"
	"donation_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BaseHandler struct {
	validator *validator.Validator
}

func NewBaseHandler(v *validator.Validator) *BaseHandler {
	return &BaseHandler{
		validator: v,
	}
}

// GetDB возвращает *gorm.DB запроса, установленный DBMiddleware.
// Отсутствие значения - ошибка сборки, поэтому паника, recovery middleware отвечает 500.
func (h *BaseHandler) GetDB(c *gin.Context) *gorm.DB {
	dbKey := string(contextkeys.DBContextKey)

	val, ok := c.Get(dbKey)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db key not found in context", "key", dbKey)
		panic("critical error: DBMiddleware did not set the db key")
	}

	db, ok := val.(*gorm.DB)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db in context is not *gorm.DB", "key", dbKey, "type", fmt.Sprintf("%T", val))
		panic("critical error: db in context has incorrect type")
	}

	return db
}

func (h *BaseHandler) BindAndValidate_JSON(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBindJSON(obj); err != nil {
		logger.CtxWarn(ctx, "Failed to bind JSON body", "error", err.Error(), "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body"))
		return false
	}

	if err := h.validator.Validate(obj); err != nil {
		if vErr, ok := err.(*validator.ValidationError); ok {
			logger.CtxWarn(ctx, "Validation failed", "errors", vErr.Errors, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
		} else {
			apperrors.HandleError(c, apperrors.InternalError(err))
		}
		return false
	}
	return true
}

func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) && appErr.HTTPCode < 500 {
		logger.CtxWarn(c.Request.Context(), "Service error",
			"error", appErr.Message,
			"details", appErr.Details,
			"path", c.Request.URL.Path,
		)
	}
	// 5xx логирует с причиной обработчик ошибок
	apperrors.HandleError(c, err)
}

// GetAdminID возвращает id администратора из session middleware.
func (h *BaseHandler) GetAdminID(c *gin.Context) (uint, bool) {
	val, ok := c.Get(contextkeys.AdminIDKey)
	if !ok {
		return 0, false
	}
	id, ok := val.(uint)
	return id, ok && id != 0
}

func (h *BaseHandler) GetSessionID(c *gin.Context) (string, bool) {
	val, ok := c.Get(contextkeys.SessionIDKey)
	if !ok {
		return "", false
	}
	id, ok := val.(string)
	return id, ok && id != ""
}
