package middleware

import (
	"net/http"

	"lactacare/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler renders the last error a handler attached with c.Error.
// Bind errors become validation errors; everything else goes through
// errors.FromDomain. Nothing is written if the handler already responded.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		var resp *errors.StandardError
		if last.IsType(gin.ErrorTypeBind) {
			resp = errors.NewStandardError("ValidationError", "malformed request body", last.Error())
		} else {
			resp = errors.FromDomain(last.Err)
		}

		status := resp.HTTPStatus()
		log := logger.Warn
		if status >= http.StatusInternalServerError {
			log = logger.Error
		}
		log("Request failed",
			zap.Int("status", status),
			zap.String("error_code", resp.Code),
			zap.String("details", resp.Details),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", GetRequestID(c)),
		)
		c.JSON(status, resp)
	}
}

// RecoveryHandler turns a handler panic into a 500 with the standard error body
func RecoveryHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("panic", recovered),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", GetRequestID(c)),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errors.NewInternalError("internal server error", nil))
	})
}
