package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const adminRole = "admin"

var (
	// ErrInvalidCredentials is returned when the admin password does not match.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrInvalidToken covers missing, malformed, expired or mis-signed tokens.
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Claims are the JWT claims issued to the dashboard admin.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 admin tokens. It replaces the
// client-side password flag of the original dashboard with a server-checked,
// expiring credential.
type TokenManager struct {
	secret        []byte
	adminPassword string
	ttl           time.Duration
}

// NewTokenManager creates a TokenManager.
func NewTokenManager(secret []byte, adminPassword string, ttl time.Duration) (*TokenManager, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: empty secret")
	}
	if adminPassword == "" {
		return nil, errors.New("auth: empty admin password")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: non-positive token ttl")
	}
	return &TokenManager{secret: secret, adminPassword: adminPassword, ttl: ttl}, nil
}

// Login checks the admin password and issues a signed token with its expiry.
func (m *TokenManager) Login(password string) (string, time.Time, error) {
	if subtle.ConstantTimeCompare([]byte(password), []byte(m.adminPassword)) != 1 {
		return "", time.Time{}, ErrInvalidCredentials
	}

	now := time.Now()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		Role: adminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify validates a token string and returns its claims.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role != adminRole {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == nil || time.Now().After(claims.ExpiresAt.Time) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
