package jwks

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://shelter.example.com/"
	testAudience = "shelter-api"
)

func signed(t *testing.T, key *rsa.PrivateKey, c jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, c)
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func testVerifier(t *testing.T) (*Verifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	kf := func(*jwt.Token) (any, error) { return &key.PublicKey, nil }
	return newVerifier(Config{Issuer: testIssuer, Audience: testAudience}, kf), key
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "auth0|abc",
		"email": "ana@example.com",
		"iss":   testIssuer,
		"aud":   testAudience,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func TestVerify_ValidToken(t *testing.T) {
	v, key := testVerifier(t)

	claims, err := v.Verify(context.Background(), signed(t, key, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "auth0|abc", claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
}

func TestVerify_Rejects(t *testing.T) {
	v, key := testVerifier(t)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token func() string
	}{
		{"expired", func() string {
			c := validClaims()
			c["exp"] = time.Now().Add(-time.Hour).Unix()
			return signed(t, key, c)
		}},
		{"wrong issuer", func() string {
			c := validClaims()
			c["iss"] = "https://evil.example.com/"
			return signed(t, key, c)
		}},
		{"wrong audience", func() string {
			c := validClaims()
			c["aud"] = "other-api"
			return signed(t, key, c)
		}},
		{"missing sub", func() string {
			c := validClaims()
			delete(c, "sub")
			return signed(t, key, c)
		}},
		{"other key", func() string { return signed(t, other, validClaims()) }},
		{"garbage", func() string { return "not-a-jwt" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.token())
			assert.True(t, errors.Is(err, ErrInvalidToken), "got %v", err)
		})
	}

	_, err = v.Verify(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrTokenEmpty)
}

func TestVerify_RejectsSelfSignedHS256(t *testing.T) {
	v, _ := testVerifier(t)

	c := validClaims()
	c["sub"] = "auth0|victim"
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("attacker-key"))
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNew_RequiresJWKSURL(t *testing.T) {
	_, err := New(context.Background(), Config{Issuer: testIssuer})
	assert.Error(t, err)
}
