package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartExpiryScheduler cancels pending matches that never found an opponent.
// A ttl of zero keeps the historical behavior: matches wait forever.
func (s *MatchService) StartExpiryScheduler(ttl time.Duration) {
	if ttl <= 0 {
		log.Println("Match expiry disabled; pending matches wait indefinitely")
		return
	}

	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			s.expireStalePending(context.Background(), ttl)
		}),
	)
}

func (s *MatchService) expireStalePending(ctx context.Context, ttl time.Duration) {
	cutoff := time.Now().Add(-ttl)
	n, err := s.Store.CancelStalePending(ctx, cutoff)
	if err != nil {
		log.Printf("[Scheduler] Failed to cancel stale matches: %v", err)
		return
	}
	if n > 0 {
		log.Printf("✅ Cancelled %d stale pending match(es)", n)
	}
}
