package auth

import (
	"errors"
	"fmt"
	"time"

	"yamdb/internal/access"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

type Claims struct {
	UserID   string      `json:"user_id"`
	Username string      `json:"username,omitempty"`
	Role     access.Role `json:"role,omitempty"`
	Type     TokenType   `json:"type"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and parses the HS256 access and refresh tokens.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (i *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	i.now = now
	return i
}

func (i *TokenIssuer) IssueAccess(userID, username string, role access.Role) (string, error) {
	now := i.now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		Type:     AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
		},
	}
	return i.sign(claims)
}

// IssueRefresh signs a refresh token identified by jti and returns its expiry
// so the caller can record it.
func (i *TokenIssuer) IssueRefresh(userID, jti string) (string, time.Time, error) {
	now := i.now()
	expires := now.Add(i.refreshTTL)
	claims := Claims{
		UserID: userID,
		Type:   RefreshToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := i.sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

func (i *TokenIssuer) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates the signature, expiry and token type.
func (i *TokenIssuer) Parse(tokenString string, want TokenType) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.Type != want || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
