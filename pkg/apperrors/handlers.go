package apperrors

import (
	"net/http"

	"donation_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// ErrorResponse - стандартное тело ошибки
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// GinErrorHandler - единый обработчик ошибок хэндлеров.
type GinErrorHandler struct{}

// HandleGinError пишет err как JSON. Все, что не AppError, становится общим 500;
// каждый 5xx логируется с причиной и отдается без деталей.
func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}

	if appErr.HTTPCode >= http.StatusInternalServerError {
		cause := appErr.Unwrap()
		if cause == nil {
			cause = appErr
		}
		logger.CtxWithError(c.Request.Context(), "Server error", cause,
			"code", appErr.Code,
			"domain", appErr.Domain,
			"path", c.Request.URL.Path,
		)
	}

	c.AbortWithStatusJSON(appErr.HTTPCode, ErrorResponse{Error: appErr.public()})
}

var defaultHandler = &GinErrorHandler{}

func HandleError(c *gin.Context, err error) {
	defaultHandler.HandleGinError(c, err)
}

// AsAppError пытается привести err к *AppError
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
