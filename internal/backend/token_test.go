package backend

import (
	"testing"
	"time"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_RoundTrip(t *testing.T) {
	secret := []byte("s1")
	user := domain.User{ID: "u1", Role: domain.RoleAdmin}

	token, err := mintToken(secret, user, time.Hour)
	require.NoError(t, err)

	claims, err := parseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestToken_WrongSecretRejected(t *testing.T) {
	token, err := mintToken([]byte("s1"), domain.User{ID: "u1"}, time.Hour)
	require.NoError(t, err)

	_, err = parseToken([]byte("s2"), token)
	require.Error(t, err)
}

func TestToken_ExpiredRejected(t *testing.T) {
	token, err := mintToken([]byte("s1"), domain.User{ID: "u1"}, -time.Minute)
	require.NoError(t, err)

	_, err = parseToken([]byte("s1"), token)
	require.Error(t, err)
}
