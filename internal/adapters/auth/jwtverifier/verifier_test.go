package jwtverifier

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, key string, method jwt.SigningMethod, claims tokenClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func validClaims(sub string) tokenClaims {
	return tokenClaims{
		Email: "ana@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    "identity",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestVerify_OK(t *testing.T) {
	v := New(secret, "identity")

	c, err := v.Verify(context.Background(), sign(t, secret, jwt.SigningMethodHS256, validClaims("42")))
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.UserID)
	assert.Equal(t, "ana@example.com", c.Email)
}

func TestVerify_Rejects(t *testing.T) {
	v := New(secret, "identity")
	ctx := context.Background()

	expired := validClaims("42")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	noExp := validClaims("42")
	noExp.ExpiresAt = nil

	otherIssuer := validClaims("42")
	otherIssuer.Issuer = "someone-else"

	cases := map[string]string{
		"empty":        "",
		"garbage":      "not-a-jwt",
		"wrong secret": sign(t, "other", jwt.SigningMethodHS256, validClaims("42")),
		"wrong method": sign(t, secret, jwt.SigningMethodHS512, validClaims("42")),
		"expired":      sign(t, secret, jwt.SigningMethodHS256, expired),
		"no exp":       sign(t, secret, jwt.SigningMethodHS256, noExp),
		"issuer":       sign(t, secret, jwt.SigningMethodHS256, otherIssuer),
		"non numeric":  sign(t, secret, jwt.SigningMethodHS256, validClaims("ana")),
		"zero subject": sign(t, secret, jwt.SigningMethodHS256, validClaims("0")),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(ctx, tok)
			assert.Error(t, err)
		})
	}
}

func TestVerify_NotConfigured(t *testing.T) {
	_, err := New("", "").Verify(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
