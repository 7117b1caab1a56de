package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelTokenRoundTrip(t *testing.T) {
	secret := []byte("secret-1")

	token, err := SignChannelToken(secret, "u1", "s1", "private-match-m1")
	require.NoError(t, err)

	claims, err := VerifyChannelToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "s1", claims.SocketID)
	assert.Equal(t, "private-match-m1", claims.Channel)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestChannelTokenWrongSecretRejected(t *testing.T) {
	token, err := SignChannelToken([]byte("secret-1"), "u1", "s1", "private-match-m1")
	require.NoError(t, err)

	_, err = VerifyChannelToken([]byte("secret-2"), token)
	assert.Error(t, err)
}

func TestChannelTokenGarbageRejected(t *testing.T) {
	_, err := VerifyChannelToken([]byte("secret-1"), "not-a-token")
	assert.Error(t, err)

	_, err = VerifyChannelToken([]byte("secret-1"), "")
	assert.Error(t, err)
}
