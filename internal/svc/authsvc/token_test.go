package authsvc_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/cryptotracker/internal/domain"
	"github.com/mkrupp/cryptotracker/internal/svc/authsvc"
)

var testSecret = []byte("test-secret")

func TestTokenIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer := authsvc.NewTokenIssuer(testSecret, time.Hour)

	token, err := issuer.Issue(42)
	require.NoError(t, err)

	userID, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	t.Parallel()

	issuer := authsvc.NewTokenIssuer(testSecret, time.Hour)

	valid, err := issuer.Issue(42)
	require.NoError(t, err)

	expired, err := authsvc.NewTokenIssuer(testSecret, -time.Minute).Issue(42)
	require.NoError(t, err)

	sign := func(method jwt.SigningMethod, key any, claims jwt.Claims) string {
		t.Helper()

		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)

		return s
	}

	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	// replace the first signature character, it carries six full bits
	sigStart := strings.LastIndex(valid, ".") + 1
	replacement := "A"
	if valid[sigStart] == 'A' {
		replacement = "B"
	}
	tampered := valid[:sigStart] + replacement + valid[sigStart+1:]

	tests := map[string]string{
		"empty":         "",
		"malformed":     "not.a.token",
		"tampered":      tampered,
		"expired":       expired,
		"wrong secret":  sign(jwt.SigningMethodHS256, []byte("other"), jwt.RegisteredClaims{Subject: "42", ExpiresAt: future}),
		"alg none":      sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.RegisteredClaims{Subject: "42", ExpiresAt: future}),
		"other hmac":    sign(jwt.SigningMethodHS512, testSecret, jwt.RegisteredClaims{Subject: "42", ExpiresAt: future}),
		"no expiry":     sign(jwt.SigningMethodHS256, testSecret, jwt.RegisteredClaims{Subject: "42"}),
		"text subject":  sign(jwt.SigningMethodHS256, testSecret, jwt.RegisteredClaims{Subject: "alice", ExpiresAt: future}),
		"zero subject":  sign(jwt.SigningMethodHS256, testSecret, jwt.RegisteredClaims{Subject: "0", ExpiresAt: future}),
		"no subject":    sign(jwt.SigningMethodHS256, testSecret, jwt.RegisteredClaims{ExpiresAt: future}),
		"trailing junk": valid + strings.Repeat("x", 3),
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			userID, err := issuer.Verify(token)
			require.ErrorIs(t, err, domain.ErrInvalidAuthToken)
			assert.Zero(t, userID)
		})
	}
}
