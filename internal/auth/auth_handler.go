package auth

import (
	"net/http"
	"strings"
	"time"

	"lactacare/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler exchanges staff credentials for a session token
type AuthHandler struct {
	users  *UserStore
	tokens *TokenManager
	logger *zap.Logger
}

func NewAuthHandler(users *UserStore, tokens *TokenManager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, logger: logger}
}

// LoginRequest carries staff credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"nurse"`
	Password string `json:"password" binding:"required" example:"nurse123"`
}

// LoginResponse carries the issued session token
type LoginResponse struct {
	Token     string    `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	Type      string    `json:"type" example:"Bearer"`
	ExpiresIn int       `json:"expires_in" example:"600"`
	ExpiresAt time.Time `json:"expires_at" example:"2024-01-15T12:00:00Z"`
}

// Login godoc
// @Summary      Login and get JWT token
// @Description  Autentica a un miembro del personal del lactario y retorna un token JWT válido por 10 minutos
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "Credenciales"
// @Success      200      {object}  LoginResponse  "Token generado exitosamente"
// @Failure      400      {object}  errors.StandardError  "Request inválido - credenciales faltantes"
// @Failure      401      {object}  errors.StandardError  "Credenciales inválidas"
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Malformed login request", zap.Error(err))
		c.Error(errors.NewValidationError("username and password are required", "username,password"))
		c.Abort()
		return
	}
	username := strings.TrimSpace(req.Username)

	if !h.users.Authenticate(username, req.Password) {
		h.logger.Warn("Rejected staff login", zap.String("username", username), zap.String("ip", c.ClientIP()))
		c.Error(errors.NewUnauthorized("invalid credentials", "username or password incorrect"))
		c.Abort()
		return
	}

	token, expiresAt, err := h.tokens.Issue(username)
	if err != nil {
		c.Error(errors.NewInternalError("failed to issue session token", err))
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		Type:      "Bearer",
		ExpiresIn: int(TokenTTL / time.Second),
		ExpiresAt: expiresAt,
	})
}
