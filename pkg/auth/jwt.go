// Package auth issues and checks session ownership tokens. A token is an
// HS256 JWT whose "sid" claim names the editing session it may modify.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrExpiredToken    = errors.New("token has expired")
	ErrInvalidClaims   = errors.New("invalid token claims")
	ErrEmptySessionID  = errors.New("session id cannot be empty")
	ErrShortSecret     = errors.New("secret is too short")
	ErrSessionMismatch = errors.New("token belongs to another session")
)

// MinSecretLength is the shortest accepted signing secret.
const MinSecretLength = 16

// Issuer is the "iss" claim of every token.
const Issuer = "netbuilder"

// Claims are the validated contents of a session token.
type Claims struct {
	SessionID string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// TokenManager signs and validates session tokens.
type TokenManager struct {
	secretKey     []byte
	tokenDuration time.Duration
	now           func() time.Time
}

// NewTokenManager creates a token manager. The secret must be at least
// MinSecretLength bytes.
func NewTokenManager(secret string, tokenDuration time.Duration) (*TokenManager, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrShortSecret, MinSecretLength, len(secret))
	}
	return &TokenManager{
		secretKey:     []byte(secret),
		tokenDuration: tokenDuration,
		now:           time.Now,
	}, nil
}

// GenerateToken issues a token for sessionID.
func (m *TokenManager) GenerateToken(sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrEmptySessionID
	}

	now := m.now()
	claims := jwt.MapClaims{
		"sid": sessionID,
		"iss": Issuer,
		"iat": now.Unix(),
		"exp": now.Add(m.tokenDuration).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken checks the signature, issuer and expiry of a token.
func (m *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	},
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claimsMap, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	sessionID, ok := claimsMap["sid"].(string)
	if !ok || sessionID == "" {
		return nil, fmt.Errorf("%w: missing or invalid sid", ErrInvalidClaims)
	}
	exp, err := claimsMap.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: missing or invalid exp", ErrInvalidClaims)
	}
	iat, err := claimsMap.GetIssuedAt()
	if err != nil || iat == nil {
		return nil, fmt.Errorf("%w: missing or invalid iat", ErrInvalidClaims)
	}

	return &Claims{
		SessionID: sessionID,
		ExpiresAt: exp.Time,
		IssuedAt:  iat.Time,
	}, nil
}

// Authorize validates a token and checks that it names sessionID.
func (m *TokenManager) Authorize(tokenString, sessionID string) error {
	claims, err := m.ValidateToken(tokenString)
	if err != nil {
		return err
	}
	if claims.SessionID != sessionID {
		return ErrSessionMismatch
	}
	return nil
}
