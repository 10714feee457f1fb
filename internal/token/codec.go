package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

var (
	// ErrExpired is returned for a well-formed token past its expiry.
	// Callers should prompt a refresh.
	ErrExpired = errors.New("token is expired")

	// ErrInvalid is returned for a malformed token, a bad signature or a
	// kind mismatch. Callers should force a re-login.
	ErrInvalid = errors.New("token is invalid")
)

// Claims are the signed contents of an issued token
type Claims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// Codec issues and verifies signed, expiring tokens. Access and refresh
// tokens are signed with distinct secrets so rotating one secret does not
// invalidate tokens of the other kind.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewCodec creates a new token codec
func NewCodec(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) *Codec {
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// IssueAccess issues a short-lived access token for the given user
func (c *Codec) IssueAccess(userID string) (string, error) {
	return c.issue(userID, KindAccess, c.accessSecret, c.accessExpiry)
}

// IssueRefresh issues a long-lived refresh token for the given user
func (c *Codec) IssueRefresh(userID string) (string, error) {
	return c.issue(userID, KindRefresh, c.refreshSecret, c.refreshExpiry)
}

func (c *Codec) issue(userID, kind string, secret []byte, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			ID:        uuid.New().String(),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", kind, err)
	}

	return tokenString, nil
}

// VerifyAccess verifies an access token and returns its claims
func (c *Codec) VerifyAccess(tokenString string) (*Claims, error) {
	return c.verify(tokenString, KindAccess, c.accessSecret)
}

// VerifyRefresh verifies a refresh token and returns its claims
func (c *Codec) VerifyRefresh(tokenString string) (*Claims, error) {
	return c.verify(tokenString, KindRefresh, c.refreshSecret)
}

func (c *Codec) verify(tokenString, kind string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if !token.Valid {
		return nil, ErrInvalid
	}

	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: expected %s token, got %s", ErrInvalid, kind, claims.Kind)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalid)
	}

	return claims, nil
}

// AccessExpirySeconds returns the access token lifetime in seconds
func (c *Codec) AccessExpirySeconds() int {
	return int(c.accessExpiry.Seconds())
}

// RefreshExpirySeconds returns the refresh token lifetime in seconds
func (c *Codec) RefreshExpirySeconds() int {
	return int(c.refreshExpiry.Seconds())
}
