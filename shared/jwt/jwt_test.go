package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJwt_RoundTrip(t *testing.T) {
	svc := New("test-secret-key-0123456789", time.Hour)

	token, err := svc.NewToken("2b0f8c62-5c1f-4a55-9f0e-0e1f4d0b2c11")
	require.NoError(t, err)

	vid, err := svc.DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, "2b0f8c62-5c1f-4a55-9f0e-0e1f4d0b2c11", vid)
}

func TestJwt_Rejects(t *testing.T) {
	svc := New("test-secret-key-0123456789", time.Hour)

	t.Run("empty visitor id", func(t *testing.T) {
		_, err := svc.NewToken("")
		assert.Error(t, err)
	})

	t.Run("wrong key", func(t *testing.T) {
		other := New("another-secret-key-987654", time.Hour)
		token, err := other.NewToken("v1")
		require.NoError(t, err)
		_, err = svc.DecodeToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		expired := New("test-secret-key-0123456789", -time.Minute)
		token, err := expired.NewToken("v1")
		require.NoError(t, err)
		_, err = svc.DecodeToken(token)
		assert.Error(t, err)
	})

	t.Run("missing claim", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("test-secret-key-0123456789"))
		require.NoError(t, err)
		_, err = svc.DecodeToken(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.DecodeToken("not.a.token")
		assert.Error(t, err)
	})
}
