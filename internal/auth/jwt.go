package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

const (
	// TokenTTL is how long a staff session token stays valid
	TokenTTL = 10 * time.Minute

	tokenIssuer = "lactacare-api"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// StaffClaims identifies the staff member a token was issued to
type StaffClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 staff session tokens
type TokenManager struct {
	secret []byte
	parser *jwt.Parser
	now    func() time.Time
	logger *zap.Logger
}

func NewTokenManager(secret string, logger *zap.Logger) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
		now:    time.Now,
		logger: logger,
	}
}

// Issue signs a session token for username and returns it with its expiry
func (m *TokenManager) Issue(username string) (string, time.Time, error) {
	issuedAt := m.now()
	expiresAt := issuedAt.Add(TokenTTL)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, StaffClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}).SignedString(m.secret)
	if err != nil {
		m.logger.Error("Failed to sign session token", zap.String("username", username), zap.Error(err))
		return "", time.Time{}, err
	}

	m.logger.Info("Session token issued", zap.String("username", username), zap.Time("expires_at", expiresAt))
	return signed, expiresAt, nil
}

// Verify checks signature, algorithm, expiry and issuer
func (m *TokenManager) Verify(raw string) (*StaffClaims, error) {
	claims := &StaffClaims{}
	_, err := m.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		m.logger.Debug("Session token expired", zap.String("username", claims.Username))
		return nil, ErrExpiredToken
	case err != nil:
		m.logger.Debug("Session token rejected", zap.Error(err))
		return nil, ErrInvalidToken
	case !claims.VerifyIssuer(tokenIssuer, true):
		m.logger.Debug("Session token from unknown issuer", zap.String("issuer", claims.Issuer))
		return nil, ErrInvalidToken
	}
	return claims, nil
}
