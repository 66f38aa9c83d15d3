package middleware

import (
	"errors"
	"net/http"
	"strings"

	"lactacare/internal/auth"
	stderrors "lactacare/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set for authenticated staff requests
const (
	UsernameContextKey = "username"
	UserIDContextKey   = "user_id"
)

// AuthMiddleware requires a valid staff session token in a Bearer header
func AuthMiddleware(tokens *auth.TokenManager, logger *zap.Logger) gin.HandlerFunc {
	reject := func(c *gin.Context, reason string, details string, fields ...zap.Field) {
		logger.Warn(reason, append(fields,
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)...)
		c.AbortWithStatusJSON(http.StatusUnauthorized, stderrors.NewUnauthorized(reason, details))
	}

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			reject(c, "missing authorization header", "Header: Authorization")
			return
		}

		scheme, raw, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || raw == "" {
			reject(c, "invalid authorization header format", "Expected: Bearer <token>")
			return
		}

		claims, err := tokens.Verify(raw)
		switch {
		case errors.Is(err, auth.ErrExpiredToken):
			reject(c, "token expired", "session expired, log in again")
			return
		case err != nil:
			reject(c, "invalid token", err.Error(), zap.Error(err))
			return
		}

		c.Set(UsernameContextKey, claims.Username)
		c.Set(UserIDContextKey, claims.Subject)
		c.Next()
	}
}
