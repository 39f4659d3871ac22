package authsvc

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkrupp/cryptotracker/internal/domain"
)

// TokenIssuer signs and verifies HS256 session tokens carrying a user ID.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a TokenIssuer for the given secret and token lifetime.
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: secret,
		ttl:    ttl,
	}
}

// Issue returns a signed token for userID, valid for the issuer's lifetime.
func (ti *TokenIssuer) Issue(userID int64) (string, error) {
	now := time.Now()

	//nolint:exhaustruct
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return token, nil
}

// Verify checks the token's signature, algorithm and expiry and returns its user ID.
// Every rejection wraps domain.ErrInvalidAuthToken.
func (ti *TokenIssuer) Verify(tokenString string) (int64, error) {
	var claims jwt.RegisteredClaims

	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (any, error) { return ti.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, errors.Join(domain.ErrInvalidAuthToken, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, errors.Join(domain.ErrInvalidAuthToken, fmt.Errorf("parse subject: %w", err))
	}

	if userID <= 0 {
		return 0, fmt.Errorf("%w: subject %d", domain.ErrInvalidAuthToken, userID)
	}

	return userID, nil
}
