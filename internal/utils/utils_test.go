package utils

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const secret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken(secret, 42, []string{"ROLE_USER"}, 15)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tok.Exp, 5*time.Second)

	claims, err := ParseAccessToken(secret, tok.Token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
	assert.Equal(t, []string{"ROLE_USER"}, claims.Roles)
}

func TestParseAccessToken_Rejects(t *testing.T) {
	good, err := NewAccessToken(secret, 1, nil, 15)
	require.NoError(t, err)
	expired, err := NewAccessToken(secret, 1, nil, -1)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1", "exp": time.Now().Add(time.Hour).Unix()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"wrong secret": good.Token,
		"expired":      expired.Token,
		"alg none":     none,
		"garbage":      "not.a.jwt",
	} {
		s := secret
		if name == "wrong secret" {
			s = "other"
		}
		_, err := ParseAccessToken(s, raw)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestNewAPIToken(t *testing.T) {
	a, err := NewAPIToken()
	require.NoError(t, err)
	b, err := NewAPIToken()
	require.NoError(t, err)

	assert.Len(t, a, APITokenLength)
	_, err = hex.DecodeString(a)
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "s3cret!"))
	assert.False(t, VerifyPassword(hash, "S3cret!"))

	hash, err = HashPassword("s3cret!", 99)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
