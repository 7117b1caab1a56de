package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsParticipant(t *testing.T) {
	bob := "bob"
	match := &ChallengeMatch{PlayerOneID: "alice", PlayerTwoID: &bob}

	assert.True(t, match.IsParticipant("alice"))
	assert.True(t, match.IsParticipant("bob"))
	assert.False(t, match.IsParticipant("mallory"))

	waiting := &ChallengeMatch{PlayerOneID: "alice"}
	assert.True(t, waiting.IsParticipant("alice"))
	assert.False(t, waiting.IsParticipant("bob"))
}

func TestOpponentOf(t *testing.T) {
	bob := "bob"
	match := &ChallengeMatch{PlayerOneID: "alice", PlayerTwoID: &bob}

	assert.Equal(t, "bob", match.OpponentOf("alice"))
	assert.Equal(t, "alice", match.OpponentOf("bob"))
	assert.Empty(t, match.OpponentOf("mallory"))

	waiting := &ChallengeMatch{PlayerOneID: "alice"}
	assert.Empty(t, waiting.OpponentOf("alice"))
}
