package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wikid-app/feed/pkg/jwt"
)

func TestInspect(t *testing.T) {
	token, err := jwt.Sign("secret", "42", "alice", time.Minute)
	require.NoError(t, err)

	claims, err := jwt.Inspect(token)
	require.NoError(t, err)
	require.Equal(t, "42", claims.Subject)
	require.Equal(t, "alice", claims.Handle)
	require.False(t, claims.Expired(time.Now()))
	require.True(t, claims.Expired(time.Now().Add(time.Hour)))
}

func TestInspectInvalid(t *testing.T) {
	_, err := jwt.Inspect("")
	require.Error(t, err)

	_, err = jwt.Inspect("not-a-token")
	require.Error(t, err)
}
