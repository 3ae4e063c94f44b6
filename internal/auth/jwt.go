package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// TokenType distinguishes short-lived access tokens from refresh tokens
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

var (
	ErrNotInitialized = errors.New("JWT secret not initialized")
	ErrWrongTokenType = errors.New("wrong token type")
)

var (
	jwtSecret  []byte
	accessTTL  = 2 * time.Hour
	refreshTTL = 7 * 24 * time.Hour
)

// JWTClaims represents the JWT token claims
type JWTClaims struct {
	UserID  string    `json:"user_id"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"is_admin"`
	Type    TokenType `json:"type"`
	jwt.RegisteredClaims
}

// InitializeJWT sets the JWT secret key and token lifetimes.
// Zero lifetimes keep the defaults.
func InitializeJWT(secret string, access, refresh time.Duration) {
	jwtSecret = []byte(secret)
	if access > 0 {
		accessTTL = access
	}
	if refresh > 0 {
		refreshTTL = refresh
	}
}

// GenerateToken creates a signed token of the given type for a user
func GenerateToken(userID, email string, isAdmin bool, tokenType TokenType) (string, error) {
	if len(jwtSecret) == 0 {
		return "", ErrNotInitialized
	}

	ttl := accessTTL
	if tokenType == TokenRefresh {
		ttl = refreshTTL
	}

	now := time.Now()
	claims := JWTClaims{
		UserID:  userID,
		Email:   email,
		IsAdmin: isAdmin,
		Type:    tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// GenerateTokenPair creates an access token and a refresh token for a user
func GenerateTokenPair(userID, email string, isAdmin bool) (access, refresh string, err error) {
	access, err = GenerateToken(userID, email, isAdmin, TokenAccess)
	if err != nil {
		return "", "", err
	}
	refresh, err = GenerateToken(userID, email, isAdmin, TokenRefresh)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// ValidateToken validates a JWT token of the expected type and returns the claims
func ValidateToken(tokenString string, expected TokenType) (*JWTClaims, error) {
	if len(jwtSecret) == 0 {
		return nil, ErrNotInitialized
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Type != expected {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrWrongTokenType, claims.Type, expected)
	}

	return claims, nil
}
