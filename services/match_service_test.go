package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"brainbytes-arena/models"
	"brainbytes-arena/realtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOrJoinMatchCreatesWhenNoneOpen(t *testing.T) {
	store := newMemoryMatchStore()
	broker := &recordingBroker{}
	svc := NewMatchService(store, broker)

	decision, err := svc.FindOrJoinMatch(context.Background(), "chal-1", "alice", "python")
	require.NoError(t, err)
	require.Equal(t, MatchCreated, decision.Status)
	require.NotNil(t, decision.Match)

	assert.Equal(t, "alice", decision.Match.PlayerOneID)
	assert.Equal(t, "python", decision.Match.PlayerOneLanguage)
	assert.Equal(t, models.MatchStatusPending, decision.Match.Status)
	assert.Nil(t, decision.Match.PlayerTwoID)
	assert.Empty(t, broker.published(), "creating a match should not publish anything")
}

func TestFindOrJoinMatchRePollReturnsOwnPending(t *testing.T) {
	store := newMemoryMatchStore()
	svc := NewMatchService(store, &recordingBroker{})

	first, err := svc.FindOrJoinMatch(context.Background(), "chal-1", "alice", "python")
	require.NoError(t, err)
	require.Equal(t, MatchCreated, first.Status)

	// Re-polling must not pair alice with herself or open a second match.
	second, err := svc.FindOrJoinMatch(context.Background(), "chal-1", "alice", "python")
	require.NoError(t, err)
	assert.Equal(t, MatchWaiting, second.Status)
	assert.Equal(t, first.Match.ID, second.Match.ID)
	assert.Equal(t, models.MatchStatusPending, second.Match.Status)
	assert.Nil(t, second.Match.PlayerTwoID)
}

func TestFindOrJoinMatchJoinsOpenMatch(t *testing.T) {
	store := newMemoryMatchStore()
	broker := &recordingBroker{}
	svc := NewMatchService(store, broker)

	created, err := svc.FindOrJoinMatch(context.Background(), "chal-1", "alice", "python")
	require.NoError(t, err)

	joined, err := svc.FindOrJoinMatch(context.Background(), "chal-1", "bob", "cpp")
	require.NoError(t, err)
	require.Equal(t, MatchJoined, joined.Status)

	assert.Equal(t, created.Match.ID, joined.Match.ID)
	assert.Equal(t, models.MatchStatusInProgress, joined.Match.Status)
	require.NotNil(t, joined.Match.PlayerTwoID)
	assert.Equal(t, "bob", *joined.Match.PlayerTwoID)
	require.NotNil(t, joined.Match.PlayerTwoLanguage)
	assert.Equal(t, "cpp", *joined.Match.PlayerTwoLanguage)
	assert.NotNil(t, joined.Match.StartedAt)

	events := broker.published()
	require.Len(t, events, 1)
	assert.Equal(t, realtime.MatchChannel(created.Match.ID), events[0].Channel)
	assert.Equal(t, realtime.EventMatchStart, events[0].Event)
}

func TestFindOrJoinMatchDifferentChallengeDoesNotPair(t *testing.T) {
	store := newMemoryMatchStore()
	svc := NewMatchService(store, &recordingBroker{})

	_, err := svc.FindOrJoinMatch(context.Background(), "chal-1", "alice", "python")
	require.NoError(t, err)

	decision, err := svc.FindOrJoinMatch(context.Background(), "chal-2", "bob", "python")
	require.NoError(t, err)
	assert.Equal(t, MatchCreated, decision.Status)
}

func TestFindOrJoinMatchConcurrentJoinersClaimOnce(t *testing.T) {
	store := newMemoryMatchStore()
	svc := NewMatchService(store, &recordingBroker{})

	_, err := svc.FindOrJoinMatch(context.Background(), "chal-1", "alice", "python")
	require.NoError(t, err)

	joiners := []string{"bob", "carol"}
	decisions := make([]*MatchDecision, len(joiners))
	var wg sync.WaitGroup
	for i, user := range joiners {
		wg.Add(1)
		go func(i int, user string) {
			defer wg.Done()
			d, err := svc.FindOrJoinMatch(context.Background(), "chal-1", user, "python")
			require.NoError(t, err)
			decisions[i] = d
		}(i, user)
	}
	wg.Wait()

	// Exactly one joiner wins the open slot; the other opens a fresh match.
	statuses := map[string]int{}
	for _, d := range decisions {
		statuses[d.Status]++
	}
	assert.Equal(t, 1, statuses[MatchJoined])
	assert.Equal(t, 1, statuses[MatchCreated])
}

func TestSendProgressUpdatePublishesToMatchChannel(t *testing.T) {
	broker := &recordingBroker{}
	svc := NewMatchService(newMemoryMatchStore(), broker)

	svc.SendProgressUpdate(context.Background(), "m-1", "alice", 42, "python")

	events := broker.published()
	require.Len(t, events, 1)
	assert.Equal(t, realtime.MatchChannel("m-1"), events[0].Channel)
	assert.Equal(t, realtime.EventOpponentProgress, events[0].Event)
	payload, ok := events[0].Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", payload["sender_id"])
	assert.Equal(t, 42, payload["code_length"])
}

func TestExpireStalePendingCancelsOnlyOldMatches(t *testing.T) {
	store := newMemoryMatchStore()
	svc := NewMatchService(store, &recordingBroker{})

	stale := &models.ChallengeMatch{ID: "m-old", ChallengeID: "chal-1", PlayerOneID: "alice", Status: models.MatchStatusPending}
	stale.CreatedAt = time.Now().Add(-2 * time.Hour)
	store.put(stale)

	fresh := &models.ChallengeMatch{ID: "m-new", ChallengeID: "chal-1", PlayerOneID: "bob", Status: models.MatchStatusPending}
	fresh.CreatedAt = time.Now()
	store.put(fresh)

	svc.expireStalePending(context.Background(), 30*time.Minute)

	oldMatch, err := store.GetMatch(context.Background(), "m-old")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCancelled, oldMatch.Status)

	newMatch, err := store.GetMatch(context.Background(), "m-new")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusPending, newMatch.Status)
}

func TestStartExpirySchedulerZeroTTLIsDisabled(t *testing.T) {
	svc := NewMatchService(newMemoryMatchStore(), &recordingBroker{})
	require.NotPanics(t, func() {
		svc.StartExpiryScheduler(0)
	})
}

func TestSendProgressUpdateSwallowsBrokerErrors(t *testing.T) {
	broker := &recordingBroker{err: assert.AnError}
	svc := NewMatchService(newMemoryMatchStore(), broker)

	// Must not panic or surface the error to the sender.
	svc.SendProgressUpdate(context.Background(), "m-1", "alice", 10, "python")
}
