// Package auth implements the signed identity token codec. Tokens are
// stateless: compromise is bounded only by the expiry window.
package auth

import (
	stderrors "errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/storyst/salestrack/internal/errors"
)

// DefaultTTL is the token validity window.
const DefaultTTL = time.Hour

// Claims is the identity claim embedded in every issued token.
type Claims struct {
	CustomerID string `json:"customerId"`
	Email      string `json:"email"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HMAC-SHA256 signed identity tokens. The
// signing secret is injected at construction; issue and verify must share
// the same secret within a deployment.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec creates a codec with the given secret and validity window.
// A non-positive ttl falls back to DefaultTTL.
func NewTokenCodec(secret []byte, ttl time.Duration) *TokenCodec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TokenCodec{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	c.now = now
	return c
}

// Issue produces a signed token carrying the customer identity, expiring
// ttl after issuance.
func (c *TokenCodec) Issue(customerID, email string) (string, error) {
	issuedAt := c.now().UTC()
	claims := Claims{
		CustomerID: customerID,
		Email:      email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", errors.Internal("Failed to sign token", err)
	}
	return signed, nil
}

// Verify validates the signature and expiry of tokenString and returns the
// embedded claims. Expired tokens and tampered or malformed tokens yield
// distinct error codes.
func (c *TokenCodec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, stderrors.New("unexpected signing method")
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))

	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.TokenExpired()
		}
		return nil, errors.InvalidToken(err)
	}
	if !token.Valid || claims.CustomerID == "" {
		return nil, errors.InvalidToken(nil)
	}
	return claims, nil
}
