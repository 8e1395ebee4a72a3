package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken token is malformed, unsigned, or carries bad claims
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken token signature is fine but it has expired
	ErrExpiredToken = errors.New("expired token")
)

// Claims JWT payload for devlink access and refresh tokens
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Refresh  bool   `json:"refresh,omitempty"`
}

// Manager issues and verifies HMAC-signed JWT tokens
type Manager struct {
	secretKey     []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewManager creates a Manager. Expiry values are in minutes.
func NewManager(secret string, accessExpireMins, refreshExpireMins int) *Manager {
	return &Manager{
		secretKey:     []byte(secret),
		accessExpiry:  time.Duration(accessExpireMins) * time.Minute,
		refreshExpiry: time.Duration(refreshExpireMins) * time.Minute,
	}
}

// GenerateAccessToken issues a short-lived access token
func (m *Manager) GenerateAccessToken(userID, username string) (string, error) {
	return m.generate(userID, username, m.accessExpiry, false)
}

// GenerateRefreshToken issues a long-lived refresh token
func (m *Manager) GenerateRefreshToken(userID, username string) (string, error) {
	return m.generate(userID, username, m.refreshExpiry, true)
}

func (m *Manager) generate(userID, username string, expiry time.Duration, refresh bool) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		UserID:   userID,
		Username: username,
		Refresh:  refresh,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// VerifyToken validates a token string and returns its claims
func (m *Manager) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// VerifyRefreshToken validates a token and requires the refresh flag
func (m *Manager) VerifyRefreshToken(tokenString string) (*Claims, error) {
	claims, err := m.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}
	if !claims.Refresh {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
