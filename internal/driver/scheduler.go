package driver

import (
	"context"
	"time"
)

// Scheduler abstracts periodic execution. The production implementation is a
// plain ticker; swapping in a push-driven trigger later only touches this
// seam, and tests drive tasks by hand.
type Scheduler interface {
	// Schedule runs task every interval until ctx is cancelled. It blocks;
	// callers run it in a goroutine.
	Schedule(ctx context.Context, interval time.Duration, task func(context.Context))
}

// TickerScheduler schedules with time.Ticker.
type TickerScheduler struct{}

func (TickerScheduler) Schedule(ctx context.Context, interval time.Duration, task func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			task(ctx)
		}
	}
}
