package services

import (
	"context"
	"sync"
	"time"

	"brainbytes-arena/models"
)

// memoryMatchStore mirrors the conditional-write semantics of the Postgres
// store so service tests can exercise race outcomes without a database.
type memoryMatchStore struct {
	mu      sync.Mutex
	matches map[string]*models.ChallengeMatch
	order   []string // insertion order stands in for created_at ASC
}

func newMemoryMatchStore() *memoryMatchStore {
	return &memoryMatchStore{matches: make(map[string]*models.ChallengeMatch)}
}

func (s *memoryMatchStore) put(match *models.ChallengeMatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *match
	s.matches[match.ID] = &cp
	s.order = append(s.order, match.ID)
}

func (s *memoryMatchStore) GetMatch(ctx context.Context, id string) (*models.ChallengeMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	match, ok := s.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	cp := *match
	return &cp, nil
}

func (s *memoryMatchStore) CreateMatch(ctx context.Context, match *models.ChallengeMatch) error {
	s.put(match)
	return nil
}

func (s *memoryMatchStore) FindPendingByOwner(ctx context.Context, challengeID, userID string) (*models.ChallengeMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		m := s.matches[id]
		if m.ChallengeID == challengeID && m.Status == models.MatchStatusPending && m.PlayerOneID == userID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memoryMatchStore) ClaimPendingMatch(ctx context.Context, challengeID, userID, language string, now time.Time) (*models.ChallengeMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		m := s.matches[id]
		if m.ChallengeID != challengeID || m.Status != models.MatchStatusPending ||
			m.PlayerTwoID != nil || m.PlayerOneID == userID {
			continue
		}
		m.PlayerTwoID = &userID
		m.PlayerTwoLanguage = &language
		m.Status = models.MatchStatusInProgress
		m.StartedAt = &now
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (s *memoryMatchStore) SaveCodeSnapshot(ctx context.Context, match *models.ChallengeMatch, userID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[match.ID]
	if !ok {
		return ErrMatchNotFound
	}
	if m.PlayerTwoID != nil && *m.PlayerTwoID == userID {
		m.PlayerTwoCode = code
	} else {
		m.PlayerOneCode = code
	}
	return nil
}

func (s *memoryMatchStore) CompleteMatch(ctx context.Context, matchID, winnerID string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[matchID]
	if !ok || m.Status != models.MatchStatusInProgress {
		return false, nil
	}
	m.Status = models.MatchStatusCompleted
	m.WinnerID = &winnerID
	m.EndedAt = &now
	return true, nil
}

func (s *memoryMatchStore) CancelStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, m := range s.matches {
		if m.Status == models.MatchStatusPending && m.CreatedAt.Before(cutoff) {
			m.Status = models.MatchStatusCancelled
			n++
		}
	}
	return n, nil
}

type memoryChallengeStore struct {
	challenges map[string]*models.Challenge
}

func newMemoryChallengeStore(challenges ...*models.Challenge) *memoryChallengeStore {
	s := &memoryChallengeStore{challenges: make(map[string]*models.Challenge)}
	for _, c := range challenges {
		s.challenges[c.ID] = c
	}
	return s
}

func (s *memoryChallengeStore) GetChallenge(ctx context.Context, id string) (*models.Challenge, error) {
	c, ok := s.challenges[id]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	cp := *c
	return &cp, nil
}

// fakeJudge replays a scripted verdict sequence and counts calls.
type fakeJudge struct {
	mu       sync.Mutex
	verdicts []Verdict
	err      error
	calls    int
}

func (j *fakeJudge) Judge(ctx context.Context, languageID int, sourceCode, stdin, expectedOutput string) (*Verdict, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return nil, j.err
	}
	idx := j.calls % len(j.verdicts)
	j.calls++
	v := j.verdicts[idx]
	return &v, nil
}

func (j *fakeJudge) callCount() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.calls
}

func passVerdict() Verdict {
	return Verdict{Status: JudgeStatus{ID: 3, Description: "Accepted"}, Stdout: "ok"}
}

func failVerdict(desc string) Verdict {
	return Verdict{Status: JudgeStatus{ID: 4, Description: desc}, Stdout: "nope"}
}

type award struct {
	WinnerID string
	MatchID  string
}

type recordingLedger struct {
	mu          sync.Mutex
	awards      []award
	invalidated []string
	err         error
}

func (l *recordingLedger) AwardMatchWin(ctx context.Context, winnerID, matchID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.awards = append(l.awards, award{WinnerID: winnerID, MatchID: matchID})
	return nil
}

func (l *recordingLedger) InvalidateProgress(ctx context.Context, userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.invalidated = append(l.invalidated, userID)
}

type publishedEvent struct {
	Channel string
	Event   string
	Payload any
}

type recordingBroker struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (b *recordingBroker) Publish(ctx context.Context, channel, event string, payload any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.events = append(b.events, publishedEvent{Channel: channel, Event: event, Payload: payload})
	return nil
}

func (b *recordingBroker) published() []publishedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]publishedEvent, len(b.events))
	copy(out, b.events)
	return out
}
