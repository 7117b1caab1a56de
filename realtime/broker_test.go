package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelNames(t *testing.T) {
	assert.Equal(t, "private-match-m1", MatchChannel("m1"))
	assert.Equal(t, "private-match-m1-user-u1", UserChannel("m1", "u1"))
}

func TestParseChannel(t *testing.T) {
	tests := []struct {
		channel string
		matchID string
		userID  string
		ok      bool
	}{
		{"private-match-m1", "m1", "", true},
		{"private-match-m1-user-u1", "m1", "u1", true},
		// UUIDs contain dashes; only the literal "-user-" separator splits.
		{"private-match-0a1b-2c3d", "0a1b-2c3d", "", true},
		{"private-match-0a1b-2c3d-user-9f8e-7d6c", "0a1b-2c3d", "9f8e-7d6c", true},
		{"private-match-", "", "", false},
		{"private-match-m1-user-", "", "", false},
		{"private-match--user-u1", "", "", false},
		{"presence-lobby", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		matchID, userID, ok := ParseChannel(tt.channel)
		assert.Equal(t, tt.ok, ok, "channel %q", tt.channel)
		assert.Equal(t, tt.matchID, matchID, "channel %q", tt.channel)
		assert.Equal(t, tt.userID, userID, "channel %q", tt.channel)
	}
}

func TestParseChannelRoundTrips(t *testing.T) {
	matchID, userID, ok := ParseChannel(MatchChannel("abc-123"))
	assert.True(t, ok)
	assert.Equal(t, "abc-123", matchID)
	assert.Empty(t, userID)

	matchID, userID, ok = ParseChannel(UserChannel("abc-123", "u-9"))
	assert.True(t, ok)
	assert.Equal(t, "abc-123", matchID)
	assert.Equal(t, "u-9", userID)
}
